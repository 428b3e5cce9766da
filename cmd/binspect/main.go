package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	parsekit "github.com/parsekit-io/parsekit"
	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/formats/bplist"
	"github.com/parsekit-io/parsekit/formats/elf"
	"github.com/parsekit-io/parsekit/formats/lz4"
	"github.com/parsekit-io/parsekit/formats/pcapng"
	"github.com/parsekit-io/parsekit/formats/png"
	"github.com/parsekit-io/parsekit/formats/qoi"
)

func main() {
	var (
		format      = flag.String("format", "auto", "Format: auto, png, elf, qoi, pcapng, lz4, bplist")
		hexDump     = flag.Bool("hex", false, "Print a hex dump window of the file")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
		version     = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("binspect %s\n", parsekit.Version)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: binspect [-format name] [-hex] [-i] <file>")
		os.Exit(1)
	}
	file := flag.Arg(0)

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		parsekit.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(file, *format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(file, *format, *hexDump); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file, format string, hexDump bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	name, summary, err := inspect(data, format)
	fmt.Printf("File: %s (%d bytes)\n", file, len(data))
	fmt.Printf("Format: %s\n", name)
	if err != nil {
		fmt.Printf("Parse: FAILED\n  %v\n", err)
		if at := fault.LocationOf(err); at != fault.NoLocation {
			fmt.Printf("\n%s\n", hexWindow(data, int(at), 4))
		}
	} else {
		fmt.Printf("Parse: %s\n", summary)
	}

	if hexDump {
		fmt.Printf("\n%s\n", hexWindow(data, 0, 16))
	}
	return nil
}

// inspect picks a parser and runs it, returning the format name and a
// one-line summary.
func inspect(data []byte, format string) (string, string, error) {
	if format == "auto" {
		format = detect(data)
	}
	parsekit.Logger().Debug("inspecting", zap.String("format", format), zap.Int("size", len(data)))

	switch format {
	case "png":
		f, err := png.Parse(data)
		if err != nil {
			return format, "", err
		}
		return format, f.String(), nil
	case "elf":
		f, err := elf.Parse(data)
		if err != nil {
			return format, "", err
		}
		return format, f.String(), nil
	case "qoi":
		img, err := qoi.Parse(data)
		if err != nil {
			return format, "", err
		}
		return format, img.String(), nil
	case "pcapng":
		s, err := pcapng.Parse(data)
		if err != nil {
			return format, "", err
		}
		return format, s.String(), nil
	case "lz4":
		f, err := lz4.Parse(data)
		if err != nil {
			return format, "", err
		}
		return format, f.String(), nil
	case "bplist":
		doc, err := bplist.Parse(data)
		if err != nil {
			return format, "", err
		}
		return format, doc.String(), nil
	}
	return format, "", fmt.Errorf("unknown format %q", format)
}

// detect guesses a format from the file's magic bytes.
func detect(data []byte) string {
	switch {
	case len(data) >= 8 && string(data[1:4]) == "PNG" && data[0] == 0x89:
		return "png"
	case len(data) >= 4 && data[0] == 0x7F && string(data[1:4]) == "ELF":
		return "elf"
	case len(data) >= 4 && string(data[:4]) == "qoif":
		return "qoi"
	case len(data) >= 4 && (string(data[:4]) == "\x0A\x0D\x0D\x0A"):
		return "pcapng"
	case len(data) >= 4 && data[0] == 0x04 && data[1] == 0x22 && data[2] == 0x4D && data[3] == 0x18:
		return "lz4"
	case len(data) >= 8 && string(data[:6]) == "bplist":
		return "bplist"
	}
	return "unknown"
}

// hexWindow renders up to rows 16-byte hex rows, starting at the row that
// contains offset.
func hexWindow(data []byte, offset, rows int) string {
	var b strings.Builder
	start := offset / 16 * 16
	for r := 0; r < rows && start < len(data); r++ {
		end := start + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&b, "%08x  ", start)
		for i := start; i < start+16; i++ {
			if i < end {
				fmt.Fprintf(&b, "%02x ", data[i])
			} else {
				b.WriteString("   ")
			}
			if i == start+7 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(" |")
		for i := start; i < end; i++ {
			c := data[i]
			if c < 0x20 || c > 0x7E {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteString("|\n")
		start = end
	}
	return strings.TrimSuffix(b.String(), "\n")
}
