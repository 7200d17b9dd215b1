package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/yudistira/storecart/internal/common"
)

var Tracer = otel.Tracer(common.AppCartService)
