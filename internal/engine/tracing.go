package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "contagion.engine"

func defaultTracer() trace.Tracer { return otel.Tracer(tracerName) }

// startRunSpan opens the span covering one run.
func (s *Simulation) startRunSpan(ctx context.Context) (context.Context, trace.Span) {
	c := s.cfg
	return s.tracer.Start(ctx, "contagion.run",
		trace.WithAttributes(
			attribute.String("contagion.run_id", s.runID),
			attribute.Int("contagion.population", c.Population),
			attribute.Int("contagion.steps", c.Steps),
			attribute.Float64("contagion.infection_radius", c.InfectionRadius),
			attribute.Float64("contagion.infection_probability", c.InfectionProbability),
			attribute.Float64("contagion.box_size", c.BoxSize),
			attribute.Int64("contagion.seed", *c.Seed),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// endRunSpan records the run outcome and closes span.
func endRunSpan(span trace.Span, totals runTotals, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(
		attribute.Int("contagion.result.new_infections", totals.NewInfections),
		attribute.Int("contagion.result.recoveries", totals.Recoveries),
		attribute.Int("contagion.result.ticks", totals.Ticks),
	)
	span.End()
}
