package segment

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/japaniel/wordray/pkg/offset"
)

// KFXDecoder converts a KFX container into its JSON content document,
// {"data": [{"position": int, "content": string}, ...]}.
type KFXDecoder interface {
	JSONContent(path string) ([]byte, error)
}

// JSONFileDecoder reads JSON content that the host already exported next to
// or instead of the KFX container.
type JSONFileDecoder struct{}

func (JSONFileDecoder) JSONContent(path string) ([]byte, error) { return os.ReadFile(path) }

type kfxContent struct {
	Data []struct {
		Position *int   `json:"position"`
		Content  string `json:"content"`
	} `json:"data"`
}

// OpenKFX decodes the book at path and parses its content blocks once.
func OpenKFX(path string, dec KFXDecoder) (Source, error) {
	if dec == nil {
		dec = JSONFileDecoder{}
	}
	data, err := dec.JSONContent(path)
	if err != nil {
		return nil, bookError(path, fmt.Errorf("%w: %v", ErrCorruptContainer, err))
	}
	return parseKFX(path, data)
}

func parseKFX(path string, data []byte) (Source, error) {
	var doc kfxContent
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, bookError(path, fmt.Errorf("%w: %v", ErrCorruptContainer, err))
	}
	segs := make(sliceSource, 0, len(doc.Data))
	for i, entry := range doc.Data {
		if entry.Position == nil {
			return nil, bookError(path, fmt.Errorf("%w: block %d has no position", ErrCorruptContainer, i))
		}
		segs = append(segs, Segment{
			Start: *entry.Position,
			Raw:   []byte(entry.Content),
			Unit:  offset.Codepoint,
		})
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	return segs, nil
}
