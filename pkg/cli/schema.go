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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/xz1/capacity-prediction/pkg/header"
	"github.com/xz1/capacity-prediction/pkg/schema"
	"github.com/xz1/capacity-prediction/pkg/serializer"
)

// schemaDocument is the feature schema as written by the schema command.
type schemaDocument struct {
	header.Header `yaml:",inline"`
	Spec          *schema.FeatureSchema `json:"spec" yaml:"spec"`
}

func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the feature schema the model expects",
		Flags: []cli.Flag{
			modelDirFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			path, err := schema.FindDescriptor(cmd.String("model-dir"))
			if err != nil {
				return fmt.Errorf("failed to locate feature schema: %w", err)
			}
			s, err := schema.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load feature schema from %q: %w", path, err)
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()

			return ser.Serialize(ctx, &schemaDocument{
				Header: header.New(header.KindFeatureSchema,
					header.WithVersion(version),
					header.WithMetadata("source", path)),
				Spec: s,
			})
		},
	}
}
