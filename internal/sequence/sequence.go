// Package sequence hands out the human-readable document numbers
// (EST000001, INV000001). Each kind has its own counter that is
// incremented atomically by the store, so concurrent creates never
// share a number. A rolled-back create leaves a gap.
package sequence

import (
	"context"
	"fmt"
)

// Kind is a numbering namespace. Its value is the number prefix.
type Kind string

const (
	KindEstimate Kind = "EST"
	KindInvoice  Kind = "INV"
)

//go:generate mockgen -source=sequence.go -destination=repository_mock.go -package=sequence
type Repository interface {
	Increment(ctx context.Context, name string) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Next reserves the next number for kind.
func (s *Service) Next(ctx context.Context, kind Kind) (string, error) {
	n, err := s.repo.Increment(ctx, string(kind))
	if err != nil {
		return "", fmt.Errorf("incrementing %s sequence: %w", kind, err)
	}

	return Format(kind, n), nil
}

// Format renders n as prefix plus a six-digit zero-padded counter.
func Format(kind Kind, n int64) string {
	return fmt.Sprintf("%s%06d", kind, n)
}
