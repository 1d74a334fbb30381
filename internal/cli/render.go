package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"ghostls/internal/config"
	"ghostls/internal/fs"
)

// Renderer prints listings.
type Renderer struct {
	Color bool
	Long  bool
}

// colorEnabled resolves a color mode against the output stream.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SortFiles orders a listing for display: `.` and `..` first, then by name.
// The iterator order is kept for equal names.
func SortFiles(files []*fs.File) {
	sort.SliceStable(files, func(i, j int) bool {
		ri, rj := dotRank(files[i]), dotRank(files[j])
		if ri != rj {
			return ri < rj
		}
		return files[i].Name < files[j].Name
	})
}

func dotRank(f *fs.File) int {
	if !f.IsDot() {
		return 2
	}
	if f.Name == "." {
		return 0
	}
	return 1
}

// paint renders the display name: directories blue, zones bold, ghosts dim.
func (r *Renderer) paint(f *fs.File) string {
	name := displayName(f)
	var attrs []color.Attribute
	if f.IsDir() {
		attrs = append(attrs, color.FgBlue)
	}
	if f.Zone {
		attrs = append(attrs, color.Bold)
	}
	if f.IsGhost() {
		attrs = append(attrs, color.Faint)
	}
	if !r.Color || len(attrs) == 0 {
		return name
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(name)
}

// displayName is the entry name with a trailing slash for directories.
func displayName(f *fs.File) string {
	if f.IsDir() && !f.IsDot() {
		return f.Name + "/"
	}
	return f.Name
}

func kindOf(f *fs.File) string {
	switch {
	case f.IsLink():
		return "link"
	case f.IsDir():
		return "dir"
	default:
		return "file"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// Render sorts files and writes them to w.
func (r *Renderer) Render(w io.Writer, files []*fs.File) error {
	SortFiles(files)
	if r.Long {
		return r.renderLong(w, files)
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(w, r.paint(f)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderLong(w io.Writer, files []*fs.File) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "TYPE", "ZONE", "GHOST", "SIZE"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "SIZE", Align: text.AlignRight},
	})

	for _, f := range files {
		size := "-"
		if !f.IsGhost() {
			size = strconv.FormatInt(f.Size(), 10)
		}
		t.AppendRow(table.Row{
			r.paint(f),
			kindOf(f),
			yesNo(f.Zone),
			yesNo(f.IsGhost()),
			size,
		})
	}
	t.Render()
	return nil
}
