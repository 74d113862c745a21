package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jddeal/go-wxdata/awips"
)

func newParseCmd() *cobra.Command {
	var showContent bool

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "List the bulletins of text product files",
		Long:  `Decodes each file into bulletins and prints the WMO heading of each one
with the UGC codes, VTEC events and coded locations of every segment.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, filename := range args {
				f := awips.NewTextProductFile(logrus.WithField("file", filename))
				if err := f.LoadFile(filename); err != nil {
					return fmt.Errorf("%s: %w", filename, err)
				}
				printFile(cmd.OutOrStdout(), filename, f, showContent)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showContent, "content", false, "print the product content of each segment")
	return cmd
}

func printFile(w io.Writer, filename string, f *awips.TextProductFile, showContent bool) {
	fmt.Fprintf(w, "%s: %s bulletins\n", filename, color.CyanString("%d", f.MessageCount()))
	for _, m := range f.Messages() {
		fmt.Fprintf(w, "%s\n", m.Header)
		for i, s := range m.Segments {
			fmt.Fprintf(w, "  segment %d\n", i+1)
			if s.Header != nil {
				if s.Header.Ugc != nil {
					fmt.Fprintf(w, "    ugc: %s (expires %s)\n", strings.Join(s.Header.Ugc.FipsIDs(), " "), s.Header.Ugc.ProductExpiration)
				}
				for _, v := range s.Header.Vtec {
					fmt.Fprintf(w, "    vtec: %s %s %s\n", v.PVtec.Key(), v.PVtec.Action.Code(), v.PVtec.Phenomenon)
				}
			}
			if s.CodedLocation != nil {
				fmt.Fprintf(w, "    location: %d points\n", len(s.CodedLocation.Coordinates))
			}
			if s.CodedMotion != nil {
				fmt.Fprintf(w, "    motion: %d deg %d kt\n", s.CodedMotion.Direction, s.CodedMotion.Speed)
			}
			if s.Impact.ThreatCategory != awips.ThreatCategoryBase {
				fmt.Fprintf(w, "    threat: %s\n", s.Impact.ThreatCategory)
			}
			if showContent {
				for _, line := range s.ProductContent {
					fmt.Fprintf(w, "    | %s\n", line)
				}
			}
		}
	}
}

func newVtecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vtec STRING...",
		Short: "Decode P-VTEC strings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, s := range args {
				v, err := awips.ParsePVtec(s)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\n", v.Key())
				fmt.Fprintf(w, "  action:       %s\n", v.Action.Code())
				fmt.Fprintf(w, "  phenomenon:   %s\n", v.Phenomenon)
				fmt.Fprintf(w, "  significance: %s\n", v.Significance)
				fmt.Fprintf(w, "  begin:        %s\n", formatEventTime(v.EventBegin))
				fmt.Fprintf(w, "  end:          %s\n", formatEventTime(v.EventEnd))
			}
			return nil
		},
	}
}

// formatEventTime shows a zero VTEC time the way forecasters read it.
func formatEventTime(t time.Time) string {
	if t.IsZero() {
		return "in effect"
	}
	return t.Format(time.RFC3339)
}

func newUgcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ugc LINE...",
		Short: "Expand UGC lines into county and zone codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := awips.ParseUgc(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "states: %s\n", strings.Join(u.States(), " "))
			fmt.Fprintf(w, "expires: %s\n", u.ProductExpiration)
			for _, id := range u.FipsIDs() {
				fmt.Fprintln(w, id)
			}
			return nil
		},
	}
}
