package instrument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskValue = "***"

// Always hidden, whatever the configuration says.
var secretFields = []string{"code", "otp", "password", "access_token", "authorization", "auth_token", "client_secret"}

// Shown with only the last four digits so support can still correlate records.
var partialFields = []string{"phone", "to", "recipient"}

// Masker hides sensitive values in log attributes and decoded JSON payloads.
type Masker struct {
	full    map[string]struct{}
	partial map[string]struct{}
}

// NewMasker masks the built-in secret and phone fields plus extra.
func NewMasker(extra []string) Masker {
	return Masker{
		full:    keySet(append(append([]string{}, secretFields...), extra...)),
		partial: keySet(partialFields),
	}
}

func keySet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(strings.ToLower(field))
		if field != "" {
			set[field] = struct{}{}
		}
	}
	return set
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// sourceFile shortens the source attribute to "internal/...:line". Frames
// outside internal/ are dropped.
func sourceFile(a slog.Attr) slog.Attr {
	src, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}
	_, rel, found := strings.Cut(src.File, "/internal/")
	if !found {
		return slog.Attr{}
	}
	return slog.String("file", fmt.Sprintf("%s:%d", filepath.Join("internal", rel), src.Line))
}

func initLogging(cfg *Config, lp *sdklog.LoggerProvider) {
	renames := map[string]string{slog.TimeKey: "ts", slog.LevelKey: "severity"}
	var sink slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     parseLevel(cfg.LogLevel),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			if a.Key == slog.SourceKey {
				return sourceFile(a)
			}
			if key, ok := renames[a.Key]; ok {
				a.Key = key
			}
			return a
		},
	})
	if lp != nil {
		sink = fanout{sink, otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(lp))}
	}

	slog.SetDefault(slog.New(&recordHandler{
		next:    sink,
		masker:  NewMasker(cfg.MaskFields),
		service: cfg.ServiceName,
	}))
}

// recordHandler masks attributes and stamps every record with the service
// name and the correlation id carried by ctx.
type recordHandler struct {
	next    slog.Handler
	masker  Masker
	service string
}

func (h *recordHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *recordHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.masker.attr(attr))
		return true
	})
	if cID := GetCorrelationID(ctx); cID != "" {
		out.AddAttrs(slog.String("_cID", cID))
	}
	out.AddAttrs(slog.String("service", h.service))
	return h.next.Handle(ctx, out)
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.masker.attr(a)
	}
	clone := *h
	clone.next = h.next.WithAttrs(masked)
	return &clone
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

// fanout sends each record to every handler enabled for its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// maskTail keeps the last four characters, e.g. +919876543210 becomes *********3210.
func maskTail(s string) string {
	if len(s) <= 4 {
		return maskValue
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// Value reports the replacement for key, if key is sensitive.
func (r Masker) Value(key string, v any) (any, bool) {
	key = strings.ToLower(key)
	if _, ok := r.full[key]; ok {
		return maskValue, true
	}
	if _, ok := r.partial[key]; ok {
		if s, isString := v.(string); isString {
			return maskTail(s), true
		}
		return maskValue, true
	}
	return nil, false
}

func (r Masker) attr(attr slog.Attr) slog.Attr {
	if masked, ok := r.Value(attr.Key, attr.Value.Resolve().Any()); ok {
		return slog.Any(attr.Key, masked)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		out := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			out = append(out, r.attr(ga))
		}
		attr.Value = slog.GroupValue(out...)
	case slog.KindString:
		if masked, ok := r.JSON([]byte(attr.Value.String())); ok {
			attr.Value = slog.StringValue(masked)
		}
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any, []any:
			attr.Value = slog.AnyValue(r.Data(v))
		case map[string]string:
			converted := make(map[string]any, len(v))
			for k, s := range v {
				converted[k] = s
			}
			attr.Value = slog.AnyValue(r.Data(converted))
		case []byte:
			if masked, ok := r.JSON(v); ok {
				attr.Value = slog.StringValue(masked)
			}
		}
	}

	return attr
}

// JSON masks a JSON object or array payload. ok is false for anything else.
func (r Masker) JSON(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(r.Data(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

// Data walks decoded JSON and masks sensitive keys at any depth.
func (r Masker) Data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if masked, ok := r.Value(k, v2); ok {
				out[k] = masked
			} else {
				out[k] = r.Data(v2)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = r.Data(v2)
		}
		return out
	default:
		return v
	}
}
