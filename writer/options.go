package writer

import "github.com/mctools/mcpl-go/internal/options"

// WithComment adds a header comment at construction time.
func WithComment(comment string) Option {
	return options.New(func(w *Writer) error { return w.AddComment(comment) })
}

// WithBlob attaches a named binary blob at construction time.
func WithBlob(key string, data []byte) Option {
	return options.New(func(w *Writer) error { return w.AddBlob(key, data) })
}

// WithUserFlags enables the per-particle userflags field.
func WithUserFlags() Option {
	return options.New(func(w *Writer) error { return w.EnableUserFlags() })
}

// WithPolarisation enables the per-particle polarisation vector.
func WithPolarisation() Option {
	return options.New(func(w *Writer) error { return w.EnablePolarisation() })
}

// WithSinglePrecision stores particle floats as float32.
func WithSinglePrecision() Option {
	return options.New(func(w *Writer) error { return w.EnableSinglePrecision() })
}

// WithUniversalPdgCode declares a single PDG code for the whole file.
func WithUniversalPdgCode(pdg int32) Option {
	return options.New(func(w *Writer) error { return w.EnableUniversalPdgCode(pdg) })
}

// WithUniversalWeight declares a single weight for the whole file.
func WithUniversalWeight(weight float64) Option {
	return options.New(func(w *Writer) error { return w.EnableUniversalWeight(weight) })
}
