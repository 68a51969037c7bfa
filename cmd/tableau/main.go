package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/clarktrimble/sabot"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tableau"
	nt "tableau/entity"
	"tableau/pager"
	"tableau/rowstore"
	"tableau/store/duck"
	"tableau/store/memo"
	"tableau/util"
)

var (
	layoutPath string
	logPath    string
	sample     bool
)

var rootCmd = &cobra.Command{
	Use:   "tableau [data file]",
	Short: "Browse rows from csv, json, parquet or saved yaml in a terminal table.",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {

		if sample {
			wrote, err := util.WriteSample([]byte(tableau.SampleLayout), layoutPath, 0o644)
			if err == nil && !wrote {
				fmt.Printf("%s already exists, leaving it be\n", layoutPath)
			}
			return err
		}
		if len(args) == 0 {
			err = errors.Errorf("no data file given")
			return
		}

		return run(cmd.Context(), args[0])
	},
}

func main() {

	rootCmd.Flags().StringVarP(&layoutPath, "layout", "l", "layout.yaml", "layout yaml path")
	rootCmd.Flags().StringVar(&logPath, "log", "tableau.log", "log file path")
	rootCmd.Flags().BoolVar(&sample, "sample", false, "write a sample layout and exit")

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) (err error) {

	logFile := util.OpenLog(logPath, 0o644)
	defer util.CloseLog(logFile)
	lgr := &sabot.Sabot{Writer: logFile}

	layout, err := tableau.LoadLayout(layoutPath)
	if err != nil {
		lgr.Info(ctx, "no layout loaded, using defaults", "path", layoutPath, "error", err.Error())
		layout = &tableau.Layout{Path: layoutPath}
		err = nil
	}

	src, offered, closer, err := source(ctx, path, layout.Table.IndexColumn, lgr)
	if err != nil {
		lgr.Error(ctx, "failed to open source", err, "path", path)
		return
	}
	defer closer()

	model, err := tableau.NewModel(ctx, layout, offered, src, lgr)
	if err != nil {
		lgr.Error(ctx, "failed to create model", err)
		return
	}

	lgr.Info(ctx, "starting up", "path", path, "layout", layoutPath)

	_, err = tea.NewProgram(model).Run()
	if err != nil {
		err = errors.Wrapf(err, "failed to run program")
		lgr.Error(ctx, "exiting", err)
		fmt.Fprintln(os.Stderr, err)
	}
	return
}

// source opens rows from path: saved yaml is served from memory and
// everything else goes through duckdb.
func source(ctx context.Context, path, index string, lgr nt.Logger) (src pager.Source, offered []nt.Column, closer func(), err error) {

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		st := rowstore.New(ctx, index, nil, lgr)
		err = st.LoadFile(path)
		if err != nil {
			return
		}

		for _, name := range st.Columns() {
			if name == st.IndexColumn() {
				continue
			}
			offered = append(offered, nt.Column{Field: name, Width: max(len(name), 4), Sizing: nt.Packed})
		}
		src, closer = memo.New(st), func() {}
		return
	}

	dk, err := duck.New(ctx, index, lgr)
	if err != nil {
		return
	}

	err = dk.Load(path)
	if err != nil {
		dk.Close()
		return
	}

	src, offered, closer = dk, dk.Columns(), dk.Close
	return
}
