// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/xz1/capacity-prediction/pkg/defaults"
	"github.com/xz1/capacity-prediction/pkg/header"
	"github.com/xz1/capacity-prediction/pkg/model"
	"github.com/xz1/capacity-prediction/pkg/predictor"
	"github.com/xz1/capacity-prediction/pkg/serializer"
	"github.com/xz1/capacity-prediction/pkg/table"
)

func predictCmd() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Score a CSV file offline",
		Description: `Reads a delimited table, scores every row with the model in --model-dir and
writes the table with a prediction column appended. The output is UTF-8 with a
byte order mark, the same as files produced by the service.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input CSV file path",
				Required: true,
			},
			modelDirFlag(),
			outputFlag(),
			&cli.IntFlag{
				Name:  "chunk-size",
				Value: defaults.ChunkSize,
				Usage: "Rows scored per inference call",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a summary of the run to this path",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			start := time.Now()

			reportFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(cmd.String("input"))
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()

			in, err := table.Read(f)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			eng, err := model.LoadEngine(cmd.String("model-dir"))
			if err != nil {
				return fmt.Errorf("failed to load model: %w", err)
			}

			out, err := predictor.ScoreTable(ctx, eng, in, int(cmd.Int("chunk-size")))
			if err != nil {
				return fmt.Errorf("failed to score input: %w", err)
			}

			if err := writeTable(cmd.String("output"), out); err != nil {
				return err
			}

			report := &scoreReport{
				Header:         header.New(header.KindScoreReport, header.WithVersion(version)),
				Input:          cmd.String("input"),
				Output:         cmd.String("output"),
				Encoding:       in.Encoding,
				Rows:           out.Len(),
				ModelVersion:   eng.Version(),
				ElapsedSeconds: time.Since(start).Seconds(),
			}
			slog.Info("scored file",
				"rows", report.Rows,
				"encoding", report.Encoding,
				"modelVersion", report.ModelVersion,
				"elapsed", time.Since(start).String())

			if path := cmd.String("report"); path != "" {
				return writeReport(ctx, reportFormat, path, report)
			}
			return nil
		},
	}
}

// scoreReport summarizes an offline scoring run.
type scoreReport struct {
	header.Header  `yaml:",inline"`
	Input          string  `json:"input" yaml:"input"`
	Output         string  `json:"output,omitempty" yaml:"output,omitempty"`
	Encoding       string  `json:"encoding" yaml:"encoding"`
	Rows           int     `json:"rows" yaml:"rows"`
	ModelVersion   string  `json:"modelVersion" yaml:"modelVersion"`
	ElapsedSeconds float64 `json:"elapsedSeconds" yaml:"elapsedSeconds"`
}

func writeReport(ctx context.Context, format serializer.Format, path string, r *scoreReport) error {
	ser := serializer.NewFileWriterOrStdout(format, path)
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()
	return ser.Serialize(ctx, r)
}

// writeTable writes t to path, or to stdout when path is empty.
func writeTable(path string, t *table.Table) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := table.Write(w, t.Columns, t.Rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
