package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"strings"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wxdata/archive2"
	"github.com/jddeal/go-wxdata/nexrad"
	"github.com/jddeal/go-wxdata/stream"
)

var cli struct {
	Args struct {
		Filenames []string
	} `positional-args:"yes" required:"yes"`
	LogLevel         string  `short:"l" long:"log-level" description:"logging level" choice:"error" choice:"warn" choice:"info" choice:"debug" choice:"trace" default:"info"`
	ShowVolumeHeader bool    `long:"show-volume-header" description:"dumps out the contents of the Volume Header"`
	Moment           string  `short:"m" long:"moment" description:"Level II moment to summarize" choice:"REF" choice:"VEL" choice:"SW" choice:"ZDR" choice:"PHI" choice:"RHO" choice:"CFP"`
	Elevation        float32 `short:"e" long:"elevation" description:"elevation angle for --moment" default:"0.5"`
	SHA256           bool    `long:"sha256" description:"print the SHA-256 of each file"`
	Workers          int     `short:"w" long:"workers" description:"files decoded in parallel" default:"4"`
	CPUProfile       string  `long:"cpu-profile" description:"write a CPU profile here"`
}

type result struct {
	filename string
	summary  string
	err      error
}

func main() {

	// parse the input args
	_, err := flags.Parse(&cli)
	if err != nil {
		os.Exit(1)
	}

	// set the logging level
	level, err := logrus.ParseLevel(cli.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cli.CPUProfile != "" {
		// run `go tool pprof <file>` and `top10` in the pprof prompt
		f, err := os.Create(cli.CPUProfile)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			logrus.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	results := decodeAll(cli.Args.Filenames)

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			logrus.Errorf("%s: %v", r.filename, r.err)
			continue
		}
		fmt.Print(r.summary)
	}
	if failed > 0 {
		logrus.Warnf("%s of %s files failed", color.RedString("%d", failed), color.CyanString("%d", len(results)))
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

// decodeAll decodes the files on a pool of workers and returns the results in
// argument order. A progress bar is shown for more than one file.
func decodeAll(filenames []string) []result {
	results := make([]result, len(filenames))

	var bar *pb.ProgressBar
	if len(filenames) > 1 {
		bar = pb.StartNew(len(filenames))
		defer bar.Finish()
	}

	workers := cli.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	wg := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = decode(filenames[i])
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}
	for i := range filenames {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func decode(filename string) result {
	log := logrus.WithField("file", filename)
	log.Info(color.CyanString("decoding ", filename))

	data, err := os.ReadFile(filename)
	if err != nil {
		return result{filename: filename, err: err}
	}

	out := &strings.Builder{}
	fmt.Fprintf(out, "%s (%s)\n", color.CyanString(filename), humanize.Bytes(uint64(len(data))))

	if cli.SHA256 {
		sum, err := stream.Digest(sha256.New(), bytes.NewReader(data))
		if err != nil {
			return result{filename: filename, err: err}
		}
		fmt.Fprintf(out, "  sha256: %s\n", hex.EncodeToString(sum))
	}

	f, err := nexrad.LoadData(bytes.NewReader(data), log)
	if err != nil {
		return result{filename: filename, err: err}
	}
	fmt.Fprintf(out, "  %s, %s messages\n", f.Format, color.CyanString("%d", f.MessageCount()))

	switch {
	case f.Level2 != nil:
		summarizeLevel2(out, f.Level2)
	case f.Level3 != nil:
		l3 := f.Level3
		fmt.Fprintf(out, "  %s\n", l3.WmoHeader())
		if h := l3.MessageHeader(); h != nil {
			fmt.Fprintf(out, "  message code %d at %v\n", h.Code, h.DateTime())
		}
		if d := l3.DescriptionBlock(); d != nil {
			fmt.Fprintf(out, "  %s at %.3f,%.3f\n", d, d.LatitudeDegrees(), d.LongitudeDegrees())
		}
	}
	return result{filename: filename, summary: out.String()}
}

func summarizeLevel2(out *strings.Builder, f *archive2.File) {
	if cli.ShowVolumeHeader {
		fmt.Fprintf(out, "  volume header: %+v\n", f.VolumeHeader)
	}
	fmt.Fprintf(out, "  %s %s from %v to %v\n", f.VolumeHeader.Filename(), f.VolumeHeader.Station(), f.StartTime(), f.EndTime())
	if vcp := f.VolumeCoveragePattern(); vcp != nil {
		fmt.Fprintf(out, "  VCP %d with %d elevations\n", vcp.PatternNumber, vcp.NumberOfElevations())
	}
	if status := f.Status(); status != nil {
		fmt.Fprintf(out, "  RDA build %.2f\n", status.BuildNumber())
	}

	counts := f.MessageCounts()
	types := make([]int, 0, len(counts))
	for t := range counts {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Fprintf(out, "  message type %2d: %s\n", t, humanize.Comma(int64(counts[uint8(t)])))
	}

	if cli.Moment != "" {
		moment := archive2.MomentType(fmt.Sprintf("%-3s", cli.Moment))
		scan, cut, cuts := f.ElevationScan(moment, cli.Elevation)
		if scan == nil {
			fmt.Fprintf(out, "  no %s data\n", cli.Moment)
			return
		}
		fmt.Fprintf(out, "  %s %.2f degrees (cuts %v): %d radials\n", cli.Moment, cut, cuts, len(scan))
	}
}
