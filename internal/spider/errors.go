package spider

import (
	"errors"
	"fmt"

	"github.com/nao1215/storyscraper/internal/model"
)

// ErrNoContent is returned by spiders whose Parse found nothing to extract.
var ErrNoContent = errors.New("no story content found")

// StageError reports a failed crawl and the stage it failed in.
type StageError struct {
	// Spider is the name of the spider that ran the crawl.
	Spider string

	// Stage is the pipeline stage that failed.
	Stage model.Stage

	// Err is the underlying error.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s stage failed: %v", e.Spider, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
