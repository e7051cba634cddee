// Package artifact writes finished documents to their destination in two
// steps.
//
// [Sink.Stage] stores the complete byte stream under a temporary name. Only
// [Artifact.Publish] makes it visible under its final name. A run stages its
// document before the label counter is committed and publishes after, so a
// failed commit never leaves a sheet behind that would be printed twice.
package artifact

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

// Sink stages documents.
type Sink interface {
	Stage(ctx context.Context, name string, data []byte) (Artifact, error)
}

// Artifact is a staged document.
type Artifact interface {
	// Path is the final location once published.
	Path() string

	// Publish moves the staged document to Path.
	Publish() error

	// Discard removes the staged document. Discard after Publish is a no-op.
	Discard() error
}

// NormalizeName validates name as a plain file name and returns its NFC form.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if err := errors.ValidateOutputName(name); err != nil {
		return "", err
	}
	return name, nil
}

// Numbered returns the name of the i-th sheet of a batch: name itself for
// i <= 1, otherwise name with -i inserted before the extension.
func Numbered(name string, i int) string {
	if i <= 1 {
		return name
	}
	ext := ""
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		name, ext = name[:dot], name[dot:]
	}
	return name + "-" + strconv.Itoa(i) + ext
}
