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

package predictor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction modes used as metric labels.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
	ModeFile   = "file"
)

var (
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capacity_predictions_total",
			Help: "Total number of prediction requests by mode and result",
		},
		[]string{"mode", "result"},
	)

	predictionRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capacity_prediction_rows_total",
			Help: "Total number of rows scored by mode",
		},
		[]string{"mode"},
	)

	predictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "capacity_prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"mode"},
	)
)

func observe(mode string, rows int, seconds float64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	predictionsTotal.WithLabelValues(mode, result).Inc()
	predictionDuration.WithLabelValues(mode).Observe(seconds)
	if err == nil {
		predictionRows.WithLabelValues(mode).Add(float64(rows))
	}
}
