package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pocketbook/internal/chart"
	"pocketbook/internal/render"
)

func newRenderCommand() *cobra.Command {
	var outDir, theme string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the category and monthly charts as SVG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			t, err := a.backend.Backend.LoadTheme(cmd.Context())
			if err != nil {
				return fmt.Errorf("load theme: %w", err)
			}
			if theme != "" {
				if t, err = chart.ParseTheme(theme); err != nil {
					return err
				}
			}

			txs, rev := a.ledger.Snapshot()
			charts := render.Build(txs, rev, t)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			for _, name := range []string{render.CategoryChart, render.MonthlyChart} {
				d, _ := charts.Drawing(name)
				path := filepath.Join(outDir, name+".svg")
				if err := writeSVGFile(path, d, t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&theme, "theme", "", "dark or light (default: stored preference)")

	return cmd
}

func writeSVGFile(path string, d chart.Drawing, theme chart.Theme) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := chart.WriteSVG(w, d, theme); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
