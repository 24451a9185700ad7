package text

import (
	"fmt"
	"strings"

	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/tokenizer"
)

// Resources bundles the read-only state every cleaning call needs. It is
// built once before any parallel work and never mutated afterwards.
type Resources struct {
	Tokenizer tokenizer.Tokenizer
	Stopwords StopwordSet
}

// LoadResources reads the stopword list and builds the dictionary-backed
// segmenter. Any failure is wrapped in ErrResourceLoad.
func LoadResources(stopwordsPath, dictPath, userDictPath string) (*Resources, error) {
	stop, err := LoadStopwords(stopwordsPath)
	if err != nil {
		return nil, err
	}

	tok, err := tokenizer.NewSegTokenizer(dictPath, userDictPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceLoad, err)
	}

	return &Resources{Tokenizer: tok, Stopwords: stop}, nil
}

// Processor turns one raw field into a cleaned token string.
type Processor struct {
	res *Resources
}

func NewProcessor(res *Resources) *Processor {
	return &Processor{res: res}
}

// Process normalizes, segments and filters a field. The result is a
// space-joined token string; it is empty when nothing survives filtering.
func (p *Processor) Process(field string) string {
	segmented := Segment(p.res.Tokenizer, Normalize(field))
	return strings.Join(Filter(segmented, p.res.Stopwords), " ")
}

// ProcessRecord cleans every text field of r. Report is cleaned only when
// hasReport is set; QID is carried through unchanged.
func (p *Processor) ProcessRecord(r dataset.Record, hasReport bool) dataset.Record {
	out := dataset.Record{
		QID:      r.QID,
		Brand:    p.Process(r.Brand),
		Model:    p.Process(r.Model),
		Question: p.Process(r.Question),
		Dialogue: p.Process(r.Dialogue),
	}

	if hasReport {
		out.Report = p.Process(r.Report)
	}

	return out
}
