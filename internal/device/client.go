package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/remkit/remkit/internal/metadata"
	"github.com/remkit/remkit/internal/shellquote"
	"github.com/remkit/remkit/internal/sidecar"
	"github.com/remkit/remkit/internal/tree"
)

// DocumentRoot is where xochitl keeps its metadata store, relative to the
// device user's home directory.
const DocumentRoot = ".local/share/remarkable/xochitl"

// restartCmd makes xochitl re-read the metadata store after a push.
const restartCmd = "systemctl restart xochitl"

// listScript enumerates every .metadata file as one JSON array of
// {filename, filetype, metadata} records. The payload type is detected from
// the sibling payload file; the epub check runs last because an epub also
// grows a pre-rendered .pdf next to it.
const listScript = `shopt -s nullglob
metafiles=(` + DocumentRoot + `/*.metadata)
numfiles=${#metafiles[@]}

filecount=1
echo '['
for file in ${metafiles[@]}
do
    base=${file%.metadata}
    filetype=""
    if [ -f "$base.pdf" ]; then filetype="pdf"; fi
    if [ -f "$base.epub" ]; then filetype="epub"; fi
    echo '{"filename": "'$file'", "filetype": "'$filetype'", "metadata": '
    cat $file
    echo '}'
    if [[ $filecount -lt $numfiles ]]; then
        echo ','
    fi
    filecount=$(($filecount + 1))
done
echo ']'`

// ErrDeclined means an overwrite needed confirmation and did not get it.
var ErrDeclined = errors.New("overwrite declined")

// Client exposes the device's document tree and the put operation.
type Client struct {
	transport Transport
	root      *tree.Node
}

// NewClient wraps a transport. Call Load before using the tree.
func NewClient(t Transport) *Client {
	return &Client{transport: t}
}

// Load fetches the full metadata record set and rebuilds the in-memory
// tree. The tree lives only for this process; the device stays
// authoritative.
func (c *Client) Load(ctx context.Context) error {
	out, err := c.transport.Run(ctx, listScript)
	if err != nil {
		return err
	}

	var raws []metadata.Raw
	if err := json.Unmarshal([]byte(out), &raws); err != nil {
		return fmt.Errorf("decode device metadata: %w", err)
	}

	root, err := tree.Build(raws)
	if err != nil {
		return err
	}
	c.root = root
	return nil
}

// Tree returns the root of the loaded tree.
func (c *Client) Tree() *tree.Node {
	return c.root
}

// PutRequest describes an upload.
type PutRequest struct {
	File   string // local document path
	Folder string // device folder path; "" is the root

	// Confirm is consulted before overwriting an existing document. nil
	// denies. Pass a constant-true func to force.
	Confirm func(prompt string) bool
}

// PutResult reports what a put did.
type PutResult struct {
	Path      string   `json:"path"`
	ID        string   `json:"id"`
	FileType  string   `json:"filetype"`
	Overwrote bool     `json:"overwrote"`
	Cleanup   []string `json:"cleanup,omitempty"` // remote cleanup commands issued
}

// Put uploads a document into a device folder.
//
// A fresh upload mints a new identifier; uploading onto an existing document
// path reuses its identifier (so the folder's child count never changes) and
// requires confirmation. When the overwrite changes the payload type, stale
// artifacts keyed to the old type are removed remotely before the push.
// Sidecars are staged in an exclusively-owned temp directory that is removed
// on every exit path.
func (c *Client) Put(ctx context.Context, req PutRequest) (*PutResult, error) {
	if c.root == nil {
		return nil, fmt.Errorf("device tree not loaded")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.File)), ".")
	stem := strings.TrimSuffix(filepath.Base(req.File), filepath.Ext(req.File))

	parent, err := tree.Resolve(c.root, req.Folder)
	if err != nil {
		return nil, fmt.Errorf("folder %q: %w", req.Folder, err)
	}
	if !parent.IsFolder() {
		return nil, fmt.Errorf("folder %q: %w", req.Folder, sidecar.ErrNotFolder)
	}

	targetPath := parent.Path + stem
	existing, err := tree.Resolve(c.root, targetPath)
	if err != nil && !errors.Is(err, tree.ErrNotFound) {
		return nil, err
	}

	var rec *metadata.Record
	var cleanup []string
	now := time.Now()
	if existing == nil {
		rec, err = sidecar.NewDocument(parent, stem, ext, now)
		if err != nil {
			return nil, err
		}
	} else {
		if existing.IsFolder() {
			return nil, fmt.Errorf("path %q is a folder: %w", targetPath, sidecar.ErrNotFolder)
		}
		rec, err = sidecar.Replacement(existing, ext, now)
		if err != nil {
			return nil, err
		}
		if req.Confirm == nil || !req.Confirm(fmt.Sprintf("Replace '%s'?", targetPath)) {
			return nil, ErrDeclined
		}
		cleanup = staleArtifactCommands(existing.ID(), existing.FileType, ext)
	}

	staging, err := os.MkdirTemp("", "remkit-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	staged, err := sidecar.Stage(staging, rec, ext, req.File)
	if err != nil {
		return nil, err
	}

	for _, cmd := range cleanup {
		if _, err := c.transport.Run(ctx, cmd); err != nil {
			return nil, err
		}
	}
	if err := c.transport.Push(ctx, staged, DocumentRoot); err != nil {
		return nil, err
	}
	if _, err := c.transport.Run(ctx, restartCmd); err != nil {
		return nil, err
	}

	if existing == nil {
		tree.Attach(parent, rec, ext)
	} else {
		existing.Record = rec
		existing.FileType = ext
	}

	return &PutResult{
		Path:      targetPath,
		ID:        rec.ID,
		FileType:  ext,
		Overwrote: existing != nil,
		Cleanup:   cleanup,
	}, nil
}

// staleArtifactCommands builds the remote cleanup for a type-changing
// overwrite: the old payload goes, an epub's pre-rendered pdf goes with it,
// and the thumbnails are cleared so xochitl regenerates them.
func staleArtifactCommands(id, oldType, newType string) []string {
	if oldType == "" || oldType == newType {
		return nil
	}
	base := DocumentRoot + "/" + id
	cmds := []string{"rm -f " + shellquote.Quote(base+"."+oldType)}
	if oldType == "epub" && newType != "pdf" {
		cmds = append(cmds, "rm -f "+shellquote.Quote(base+".pdf"))
	}
	cmds = append(cmds, "rm -rf "+shellquote.Quote(base+".thumbnails")+"/*")
	return cmds
}
