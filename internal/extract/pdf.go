package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"rsc.io/pdf"
)

// gapRatio is the horizontal gap, relative to font size, treated as a word break.
const gapRatio = 0.2

func pdfText(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	// rsc.io/pdf panics on many malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// A newline between pages keeps the last word of one page from
		// fusing with the first word of the next.
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		writePageText(&b, page.Content().Text)
	}
	return b.String(), nil
}

func writePageText(b *strings.Builder, runs []pdf.Text) {
	for i, run := range runs {
		if i > 0 {
			prev := runs[i-1]
			switch {
			case math.Abs(run.Y-prev.Y) > lineTolerance(prev):
				b.WriteByte('\n')
			case run.X-(prev.X+prev.W) > gapRatio*fontSize(prev) && !endsWithSpace(prev.S) && !strings.HasPrefix(run.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.S)
	}
}

func lineTolerance(t pdf.Text) float64 {
	return math.Max(fontSize(t)/2, 1)
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 1
	}
	return t.FontSize
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
}
