package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"animerec/internal/domain"
	"animerec/internal/tui"
)

func writeResult(w io.Writer, res domain.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "text", "":
		if _, err := fmt.Fprintf(w, "Recommendations for: %s\n", res.Query); err != nil {
			return err
		}
		for i, r := range res.Results {
			card := tui.RenderCard(i+1, r.Item, fmt.Sprintf("distance %.3f", r.Distance))
			if _, err := fmt.Fprintln(w, card); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
