// Package ordercode genera los códigos de orden legibles del sistema,
// con formato PREFIX-AÑO-SECUENCIA (ej: VNY-2026-0001).
package ordercode

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStorageUnavailable indica que el contador persistido no se pudo
// leer o incrementar. Nunca se fabrica un código ante este error.
var ErrStorageUnavailable = errors.New("contador de órdenes no disponible")

// CounterStore es el contador monotónico persistido. La implementación
// debe incrementar y devolver de forma atómica (ver repository).
type CounterStore interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Generator struct {
	prefix   string
	counters CounterStore
	now      func() time.Time
}

func New(prefix string, counters CounterStore) *Generator {
	return &Generator{prefix: prefix, counters: counters, now: time.Now}
}

// NewWithClock permite fijar el reloj en tests.
func NewWithClock(prefix string, counters CounterStore, now func() time.Time) *Generator {
	return &Generator{prefix: prefix, counters: counters, now: now}
}

// Next devuelve el siguiente código. La secuencia se rellena con ceros a
// 4 dígitos y se ensancha sola pasado 9999 (%04d nunca trunca).
func (g *Generator) Next(ctx context.Context) (string, error) {
	seq, err := g.counters.Next(ctx, "orders")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return fmt.Sprintf("%s-%d-%04d", g.prefix, g.now().Year(), seq), nil
}
