package coach

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	testhelpers "mercator-hq/tonecoach/internal/providers"
	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/prompt"
	"mercator-hq/tonecoach/pkg/telemetry/tracing"
)

func TestService_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := tracing.New(&config.TracingConfig{Enabled: true, Sampler: tracing.SamplerAlways}, "test",
		tracing.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("tracing.New() error = %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	f := newFixture(t, "")
	f.mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StreamChunks: testhelpers.MockStream([]string{"Alpha: Sure.\n", "Beta: Fine."}, 50, 4),
	})

	ctx, root := tp.Start(context.Background(), "request")
	stream, err := f.svc.Start(ctx, Request{RequestID: "req-9", Mode: prompt.ModeCoach, ThreadID: "t-1", Draft: "d", Goal: "g"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := stream.Relay(ctx, &bytes.Buffer{}); err != nil {
		t.Fatalf("Relay() error = %v", err)
	}
	root.End()

	if got := f.mock.LastRequestHeader("traceparent"); !strings.Contains(got, tracing.TraceID(ctx)) {
		t.Errorf("model request traceparent = %q, want trace %s", got, tracing.TraceID(ctx))
	}

	spans := make(map[string]map[string]string)
	for _, s := range recorder.Ended() {
		attrs := make(map[string]string)
		for _, kv := range s.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		spans[s.Name()] = attrs
		if s.Name() != "request" && s.Parent().TraceID() != root.SpanContext().TraceID() {
			t.Errorf("span %s is not part of the request trace", s.Name())
		}
	}

	start, ok := spans["coach.start"]
	if !ok {
		t.Fatal("coach.start span not recorded")
	}
	if start[tracing.AttrThreadID] != "t-1" || start[tracing.AttrModel] != "llama3.1" {
		t.Errorf("coach.start attributes = %v", start)
	}

	rel, ok := spans["coach.relay"]
	if !ok {
		t.Fatal("coach.relay span not recorded")
	}
	if rel[tracing.AttrOutcome] != "draft_created" || rel[tracing.AttrDraftID] != "draft-1" {
		t.Errorf("coach.relay attributes = %v", rel)
	}
	if rel[tracing.AttrChunks] != "2" {
		t.Errorf("chunks = %q, want 2", rel[tracing.AttrChunks])
	}
}
