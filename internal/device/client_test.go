package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/remkit/remkit/internal/metadata"
	"github.com/remkit/remkit/internal/sidecar"
	"github.com/remkit/remkit/internal/testutil"
	"github.com/remkit/remkit/internal/tree"
)

func listingJSON(t *testing.T, raws []metadata.Raw) string {
	t.Helper()
	data, err := json.Marshal(raws)
	if err != nil {
		t.Fatalf("marshal listing: %v", err)
	}
	return string(data)
}

// booksListing is the §8 end-to-end record set: root -> Books/ -> Report.
func booksListing(t *testing.T) string {
	return listingJSON(t, []metadata.Raw{
		testutil.RawFolder("aaa", "", "Books"),
		testutil.RawDocument("bbb", "aaa", "Report", "pdf"),
	})
}

func loadedClient(t *testing.T, ft *testutil.FakeTransport) *Client {
	t.Helper()
	c := NewClient(ft)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func writeLocal(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func confirmYes(string) bool { return true }

func TestLoadBuildsTree(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	if !ft.CommandRun(".metadata") {
		t.Error("Load did not run the enumeration script")
	}

	books, err := tree.Resolve(c.Tree(), "Books")
	if err != nil {
		t.Fatalf("Resolve(Books): %v", err)
	}
	if books.Path != "Books/" || books.ID() != "aaa" {
		t.Errorf("Books node = %q/%s, want Books//aaa", books.Path, books.ID())
	}
	report, err := tree.Resolve(c.Tree(), "Books/Report")
	if err != nil {
		t.Fatalf("Resolve(Books/Report): %v", err)
	}
	if report.ID() != "bbb" || report.FileType != "pdf" {
		t.Errorf("Report node = %s/%s, want bbb/pdf", report.ID(), report.FileType)
	}
}

func TestLoadTransportError(t *testing.T) {
	wantErr := &TransportError{Op: "run", Stderr: "connection reset", Err: errors.New("boom")}
	ft := &testutil.FakeTransport{RunErr: wantErr}
	c := NewClient(ft)

	err := c.Load(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Load = %v, want TransportError", err)
	}
	if !strings.Contains(te.Error(), "connection reset") {
		t.Errorf("error %q should carry remote stderr", te)
	}
}

func TestPutNewDocument(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	res, err := c.Put(context.Background(), PutRequest{
		File:   writeLocal(t, "notes.epub"),
		Folder: "Books",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if res.Path != "Books/notes" {
		t.Errorf("Path = %q, want Books/notes", res.Path)
	}
	if res.ID == "" || res.ID == "bbb" {
		t.Errorf("expected a freshly minted identifier, got %q", res.ID)
	}
	if res.FileType != "epub" || res.Overwrote {
		t.Errorf("FileType/Overwrote = %s/%t, want epub/false", res.FileType, res.Overwrote)
	}

	pushed, err := ft.LastPush()
	if err != nil {
		t.Fatal(err)
	}
	if len(pushed) != 5 {
		t.Fatalf("pushed %d paths, want 5: %v", len(pushed), pushed)
	}
	names := make(map[string]bool)
	for _, p := range pushed {
		names[filepath.Base(p)] = true
	}
	for _, want := range []string{res.ID + ".metadata", res.ID + ".content", res.ID + ".epub", res.ID, res.ID + ".thumbnails"} {
		if !names[want] {
			t.Errorf("push missing %s (got %v)", want, pushed)
		}
	}
	if ft.PushDirs[0] != DocumentRoot {
		t.Errorf("pushed to %q, want %q", ft.PushDirs[0], DocumentRoot)
	}
	if !ft.CommandRun(restartCmd) {
		t.Error("xochitl was not restarted after the push")
	}

	node, err := tree.Resolve(c.Tree(), "Books/notes")
	if err != nil {
		t.Fatalf("Resolve after put: %v", err)
	}
	if node.IsFolder() || node.FileType != "epub" {
		t.Errorf("new node folder=%t filetype=%s, want document/epub", node.IsFolder(), node.FileType)
	}
}

func TestPutMissingFolder(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	_, err := c.Put(context.Background(), PutRequest{
		File:   writeLocal(t, "notes.epub"),
		Folder: "Nope",
	})
	if !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("Put into missing folder = %v, want ErrNotFound", err)
	}
	if len(ft.Pushed) != 0 {
		t.Error("nothing should be pushed when the folder is missing")
	}
}

func TestPutTargetNotAFolder(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	_, err := c.Put(context.Background(), PutRequest{
		File:   writeLocal(t, "notes.epub"),
		Folder: "Books/Report",
	})
	if !errors.Is(err, sidecar.ErrNotFolder) {
		t.Fatalf("Put into a document = %v, want ErrNotFolder", err)
	}
}

func TestPutUnsupportedType(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	_, err := c.Put(context.Background(), PutRequest{
		File:   writeLocal(t, "notes.docx"),
		Folder: "Books",
	})
	if !errors.Is(err, sidecar.ErrUnsupportedType) {
		t.Fatalf("Put(docx) = %v, want ErrUnsupportedType", err)
	}
}

// Putting the same file to the same folder twice must reuse the identifier
// and leave the folder's child count unchanged.
func TestPutIdempotence(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)
	file := writeLocal(t, "Report.pdf")

	books, _ := tree.Resolve(c.Tree(), "Books")
	before := len(books.Children)

	res, err := c.Put(context.Background(), PutRequest{File: file, Folder: "Books", Confirm: confirmYes})
	if err != nil {
		t.Fatalf("Put (overwrite): %v", err)
	}
	if res.ID != "bbb" {
		t.Errorf("overwrite minted new id %q, want reused bbb", res.ID)
	}
	if !res.Overwrote {
		t.Error("Overwrote = false, want true")
	}
	if len(res.Cleanup) != 0 {
		t.Errorf("same-type overwrite issued cleanup: %v", res.Cleanup)
	}
	if got := len(books.Children); got != before {
		t.Errorf("child count changed: %d -> %d", before, got)
	}

	res2, err := c.Put(context.Background(), PutRequest{File: file, Folder: "Books", Confirm: confirmYes})
	if err != nil {
		t.Fatalf("Put (second overwrite): %v", err)
	}
	if res2.ID != "bbb" {
		t.Errorf("second overwrite minted new id %q", res2.ID)
	}
	if got := len(books.Children); got != before {
		t.Errorf("child count changed on second put: %d -> %d", before, got)
	}
}

func TestPutDeclined(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	_, err := c.Put(context.Background(), PutRequest{
		File:   writeLocal(t, "Report.pdf"),
		Folder: "Books",
	})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("Put without confirmation = %v, want ErrDeclined", err)
	}
	if len(ft.Pushed) != 0 {
		t.Error("declined overwrite must not push")
	}
}

// Overwriting a pdf with an epub removes the stale payload and clears the
// thumbnails before the push.
func TestPutTypeChangeCleanup(t *testing.T) {
	ft := &testutil.FakeTransport{Listing: booksListing(t)}
	c := loadedClient(t, ft)

	res, err := c.Put(context.Background(), PutRequest{
		File:    writeLocal(t, "Report.epub"),
		Folder:  "Books",
		Confirm: confirmYes,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(res.Cleanup) != 2 {
		t.Fatalf("cleanup = %v, want stale payload removal + thumbnail clear", res.Cleanup)
	}
	if !ft.CommandRun("rm -f '" + DocumentRoot + "/bbb.pdf'") {
		t.Errorf("stale pdf payload not removed; commands: %v", ft.Commands)
	}
	if !ft.CommandRun("rm -rf '" + DocumentRoot + "/bbb.thumbnails'/*") {
		t.Errorf("thumbnails not cleared; commands: %v", ft.Commands)
	}

	node, _ := tree.Resolve(c.Tree(), "Books/Report")
	if node.FileType != "epub" {
		t.Errorf("FileType after overwrite = %q, want epub", node.FileType)
	}
}

// Overwriting an epub also removes the device's pre-rendered pdf.
func TestPutEpubOverwriteRemovesRenderedPDF(t *testing.T) {
	listing := listingJSON(t, []metadata.Raw{
		testutil.RawFolder("aaa", "", "Books"),
		testutil.RawDocument("bbb", "aaa", "Report", "epub"),
	})
	ft := &testutil.FakeTransport{Listing: listing}
	c := loadedClient(t, ft)

	// When the incoming type is pdf the pre-rendered pdf is about to be
	// overwritten by the push itself, so it must not be removed.
	cmds := staleArtifactCommands("bbb", "epub", "pdf")
	for _, cmd := range cmds {
		if strings.Contains(cmd, "bbb.pdf") {
			t.Errorf("epub->pdf overwrite must not remove the incoming pdf: %v", cmds)
		}
	}

	res, err := c.Put(context.Background(), PutRequest{
		File:    writeLocal(t, "Report.pdf"),
		Folder:  "Books",
		Confirm: confirmYes,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !ft.CommandRun("rm -f '" + DocumentRoot + "/bbb.epub'") {
		t.Errorf("stale epub payload not removed; commands: %v", ft.Commands)
	}
	if res.FileType != "pdf" {
		t.Errorf("FileType = %q, want pdf", res.FileType)
	}
}

func TestPutPushFailure(t *testing.T) {
	ft := &testutil.FakeTransport{
		Listing: booksListing(t),
		PushErr: &TransportError{Op: "push", Err: fmt.Errorf("scp: no space left")},
	}
	c := loadedClient(t, ft)

	_, err := c.Put(context.Background(), PutRequest{
		File:   writeLocal(t, "notes.epub"),
		Folder: "Books",
	})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Put = %v, want TransportError", err)
	}
	// The tree must not show a node the device never received.
	if _, err := tree.Resolve(c.Tree(), "Books/notes"); !errors.Is(err, tree.ErrNotFound) {
		t.Error("failed push must not attach the node")
	}
}
