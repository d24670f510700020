package compound

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/DiazoScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// ─────────────────────────────────────────────────────────────────────────────
// Store — frozen, index-addressed fingerprint collection
// ─────────────────────────────────────────────────────────────────────────────

// Entry is one compound held by a Store.  Label is nil for unlabeled (query)
// compounds.
type Entry struct {
	Compound
	Label       *ctypes.Label
	Fingerprint *Fingerprint
}

// Input is one row submitted to BuildStore.  Label is optional.
type Input struct {
	Name   string
	SMILES string
	Label  *ctypes.Label
}

// Store holds fingerprinted compounds addressed by a stable positional index
// assigned at build time.  A Store is immutable after BuildStore returns, so
// concurrent searches never need locking and index-based results stay valid
// for the Store's lifetime.
type Store struct {
	fpType  ctypes.FingerprintType
	entries []Entry
}

// Len returns the number of compounds held.
func (s *Store) Len() int { return len(s.entries) }

// At returns the entry at index i.  Indices run 0..Len()-1 in build order.
func (s *Store) At(i int) Entry { return s.entries[i] }

// FingerprintType identifies the algorithm every held fingerprint was
// computed with.
func (s *Store) FingerprintType() ctypes.FingerprintType { return s.fpType }

// LabeledCount returns how many entries carry a label.
func (s *Store) LabeledCount() int {
	n := 0
	for _, e := range s.entries {
		if e.Label != nil {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// BuildStore
// ─────────────────────────────────────────────────────────────────────────────

// BuildOptions tunes store construction.
type BuildOptions struct {
	// Workers bounds the fingerprinting goroutines; 0 means runtime.NumCPU().
	Workers int

	// Logger receives per-compound failure warnings.  Nil disables logging.
	Logger logging.Logger
}

// buildResult carries one compound's outcome back from the worker pool.
type buildResult struct {
	fp     *Fingerprint
	reason string
}

// BuildStore fingerprints every input in parallel and assembles the surviving
// compounds into a frozen Store.  Entries keep the relative input order, so
// the index of a compound in the Store is stable across identical builds.
//
// A compound whose fingerprint cannot be computed is dropped from the Store
// and recorded in the BuildReport; the build itself only fails on context
// cancellation.  Callers must inspect the report rather than assume every
// input was admitted.
func BuildStore(ctx context.Context, provider Provider, inputs []Input, opts BuildOptions) (*Store, ctypes.BuildReport, error) {
	if provider == nil {
		return nil, ctypes.BuildReport{}, errors.New(errors.CodeInvalidParam, "fingerprint provider is required")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	results := make([]buildResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fp, err := provider.Compute(inputs[i].SMILES)
			if err != nil {
				results[i] = buildResult{reason: err.Error()}
				return nil
			}
			results[i] = buildResult{fp: fp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ctypes.BuildReport{}, errors.Wrap(err, errors.CodeFingerprintBuildFailed, "fingerprint store build aborted")
	}

	store := &Store{
		fpType:  provider.Type(),
		entries: make([]Entry, 0, len(inputs)),
	}
	report := ctypes.BuildReport{}
	for i, in := range inputs {
		if results[i].fp == nil {
			report.Failures = append(report.Failures, ctypes.BuildFailure{
				Name:   in.Name,
				SMILES: in.SMILES,
				Reason: results[i].reason,
			})
			log.Warn("compound dropped from fingerprint store",
				logging.String("compound", in.Name),
				logging.String("reason", results[i].reason))
			continue
		}
		store.entries = append(store.entries, Entry{
			Compound:    Compound{Name: in.Name, SMILES: in.SMILES},
			Label:       in.Label,
			Fingerprint: results[i].fp,
		})
	}
	report.Built = len(store.entries)

	log.Debug("fingerprint store built",
		logging.String("fingerprint_type", string(store.fpType)),
		logging.Int("built", report.Built),
		logging.Int("failed", len(report.Failures)))

	return store, report, nil
}

// LabeledInputs converts a LabeledSet into BuildStore inputs, preserving order.
func LabeledInputs(set *LabeledSet) []Input {
	inputs := make([]Input, set.Len())
	for i := 0; i < set.Len(); i++ {
		m := set.At(i)
		label := m.Label
		inputs[i] = Input{Name: m.Name, SMILES: m.SMILES, Label: &label}
	}
	return inputs
}

// UnlabeledInputs converts plain compounds into BuildStore inputs.
func UnlabeledInputs(compounds []Compound) []Input {
	inputs := make([]Input, len(compounds))
	for i, c := range compounds {
		inputs[i] = Input{Name: c.Name, SMILES: c.SMILES}
	}
	return inputs
}
