package compound

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/bits"
	"regexp"
	"strings"

	"github.com/turtacn/DiazoScreen/pkg/errors"
	ctypes "github.com/turtacn/DiazoScreen/pkg/types/compound"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fingerprint — packed bit-vector structural descriptor
// ─────────────────────────────────────────────────────────────────────────────

// Fingerprint represents a molecular fingerprint as a bit vector.  Bit i is
// stored in byte i/8 at bit position i%8.
type Fingerprint struct {
	// Type identifies which fingerprint algorithm produced the vector.
	Type ctypes.FingerprintType `json:"type"`

	// Bits is the packed bit vector.
	Bits []byte `json:"bits"`

	// Length is the total number of bits.
	Length int `json:"length"`

	// OnBits is the count of set bits (popcount).
	OnBits int `json:"on_bits"`
}

// NewFingerprint constructs a Fingerprint from packed bit data, computing the
// popcount once up front.
func NewFingerprint(fpType ctypes.FingerprintType, data []byte, length int) *Fingerprint {
	on := 0
	for _, b := range data {
		on += bits.OnesCount8(b)
	}
	return &Fingerprint{Type: fpType, Bits: data, Length: length, OnBits: on}
}

// GetBit reports whether the bit at index is set.  Out-of-range indices are
// reported as unset.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return fp.Bits[index/8]&(1<<uint(index%8)) != 0
}

// SetBit sets the bit at index, keeping OnBits consistent.
func (fp *Fingerprint) SetBit(index int) {
	if index < 0 || index >= fp.Length {
		return
	}
	old := fp.Bits[index/8]
	fp.Bits[index/8] |= 1 << uint(index%8)
	if old != fp.Bits[index/8] {
		fp.OnBits++
	}
}

// setRawBit sets a bit in a bare byte slice during fingerprint construction.
func setRawBit(data []byte, index int) {
	data[index/8] |= 1 << uint(index%8)
}

// ─────────────────────────────────────────────────────────────────────────────
// Provider — fingerprint computation behind an interface
// ─────────────────────────────────────────────────────────────────────────────

// Provider computes a fingerprint for a SMILES string.  The store and
// classifier depend only on this interface, so the simplified text-hashing
// implementations below can be swapped for an RDKit-backed provider without
// touching any consumer.
type Provider interface {
	// Compute returns the fingerprint for smiles, or an error when the
	// structure cannot be fingerprinted.
	Compute(smiles string) (*Fingerprint, error)

	// Type identifies the algorithm this provider implements.
	Type() ctypes.FingerprintType
}

// ProviderOptions tunes the hashed fingerprint providers.  Zero values select
// the conventional defaults (radius 2, 2048 bits, paths 1..7).
type ProviderOptions struct {
	Bits         int
	MorganRadius int
	MinPathLen   int
	MaxPathLen   int
}

func (o ProviderOptions) withDefaults() ProviderOptions {
	if o.Bits <= 0 {
		o.Bits = 2048
	}
	if o.MorganRadius <= 0 {
		o.MorganRadius = 2
	}
	if o.MinPathLen < 1 {
		o.MinPathLen = 1
	}
	if o.MaxPathLen < o.MinPathLen {
		o.MaxPathLen = 7
	}
	return o
}

// NewProvider returns the Provider for the requested fingerprint type.
func NewProvider(fpType ctypes.FingerprintType, opts ProviderOptions) (Provider, error) {
	opts = opts.withDefaults()
	switch fpType {
	case ctypes.FPMorgan:
		return &morganProvider{radius: opts.MorganRadius, nBits: opts.Bits}, nil
	case ctypes.FPMACCS:
		return &maccsProvider{}, nil
	case ctypes.FPTopological:
		return &topologicalProvider{minPath: opts.MinPathLen, maxPath: opts.MaxPathLen, nBits: opts.Bits}, nil
	default:
		return nil, errors.Newf(errors.CodeFingerprintTypeUnsupported, "unsupported fingerprint type %q", string(fpType))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SMILES tokenisation helpers
// ─────────────────────────────────────────────────────────────────────────────

var smilesStripPattern = regexp.MustCompile(`[\[\]0-9\-=#/\\()+.@]`)

// extractAtoms pulls the atom letters out of a SMILES string.  This is a
// deliberate simplification: bond topology is ignored and only the atom
// sequence survives, which is sufficient for the hashed descriptors below.
func extractAtoms(smiles string) []string {
	cleaned := smilesStripPattern.ReplaceAllString(smiles, "")
	atoms := make([]string, 0, len(cleaned))
	for _, ch := range cleaned {
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
			atoms = append(atoms, string(ch))
		}
	}
	return atoms
}

// hashDescriptor maps an arbitrary descriptor string onto a 64-bit hash.
func hashDescriptor(desc string) uint64 {
	sum := sha256.Sum256([]byte(desc))
	return binary.BigEndian.Uint64(sum[:8])
}

// ─────────────────────────────────────────────────────────────────────────────
// Morgan (circular) provider
// ─────────────────────────────────────────────────────────────────────────────

// morganProvider hashes atom-centred circular environments up to a bond
// radius into a fixed-width bit vector, after the Morgan/ECFP scheme.
type morganProvider struct {
	radius int
	nBits  int
}

func (p *morganProvider) Type() ctypes.FingerprintType { return ctypes.FPMorgan }

func (p *morganProvider) Compute(smiles string) (*Fingerprint, error) {
	if smiles == "" {
		return nil, errors.New(errors.CodeCompoundInvalidSMILES, "SMILES string cannot be empty")
	}
	atoms := extractAtoms(smiles)
	if len(atoms) == 0 {
		return nil, errors.New(errors.CodeCompoundInvalidSMILES, "no atoms found in SMILES").
			WithDetail(smiles)
	}

	data := make([]byte, (p.nBits+7)/8)
	for i, atom := range atoms {
		for r := 0; r <= p.radius; r++ {
			// Environment descriptor: the atom, its neighborhood at radius r,
			// and its position along the chain.
			env := environmentAt(atoms, i, r)
			h := hashDescriptor(fmt.Sprintf("%s|%d|%s", atom, r, env))
			setRawBit(data, int(h%uint64(p.nBits)))
		}
	}
	return NewFingerprint(ctypes.FPMorgan, data, p.nBits), nil
}

// environmentAt joins the atoms within radius r of position i, clamped to the
// chain boundaries.
func environmentAt(atoms []string, i, r int) string {
	lo := i - r
	if lo < 0 {
		lo = 0
	}
	hi := i + r + 1
	if hi > len(atoms) {
		hi = len(atoms)
	}
	return strings.Join(atoms[lo:hi], "")
}

// ─────────────────────────────────────────────────────────────────────────────
// MACCS-style keys provider
// ─────────────────────────────────────────────────────────────────────────────

// maccsKey pairs a key index with the substring pattern that sets it.
type maccsKey struct {
	bit     int
	pattern string
}

// maccsKeys is a reduced table of the 166-key MACCS set: aromatic systems,
// heteroatoms, and the functional groups most discriminative for natural
// products.
var maccsKeys = []maccsKey{
	{10, "c1ccccc1"}, // benzene
	{11, "c1cccc1"},  // 5-membered aromatic
	{20, "n"},        // aromatic nitrogen
	{21, "N"},        // nitrogen
	{22, "O"},        // oxygen
	{23, "S"},        // sulfur
	{24, "F"},        // fluorine
	{25, "Cl"},       // chlorine
	{26, "Br"},       // bromine
	{27, "P"},        // phosphorus
	{30, "C(=O)O"},   // carboxylic acid
	{31, "C(=O)N"},   // amide
	{32, "C=O"},      // carbonyl
	{33, "C#N"},      // nitrile
	{34, "[NH2]"},    // primary amine
	{35, "O[H]"},     // hydroxyl
	{36, "C=C"},      // double bond
	{37, "C#C"},      // triple bond
	{38, "N=N"},      // azo / diazo
	{40, "("},        // branching
}

// maccsProvider sets structural keys by substring matching against the SMILES
// text, plus coarse size keys.  Fixed 166-bit width.
type maccsProvider struct{}

func (p *maccsProvider) Type() ctypes.FingerprintType { return ctypes.FPMACCS }

func (p *maccsProvider) Compute(smiles string) (*Fingerprint, error) {
	if smiles == "" {
		return nil, errors.New(errors.CodeCompoundInvalidSMILES, "SMILES string cannot be empty")
	}
	atoms := extractAtoms(smiles)
	if len(atoms) == 0 {
		return nil, errors.New(errors.CodeCompoundInvalidSMILES, "no atoms found in SMILES").
			WithDetail(smiles)
	}

	const nBits = 166
	data := make([]byte, (nBits+7)/8)

	for _, key := range maccsKeys {
		if key.bit >= nBits {
			continue
		}
		if strings.Contains(smiles, key.pattern) {
			setRawBit(data, key.bit)
		}
	}

	// Size keys.
	if len(atoms) > 5 {
		setRawBit(data, 50)
	}
	if len(atoms) > 10 {
		setRawBit(data, 51)
	}
	if len(atoms) > 20 {
		setRawBit(data, 52)
	}

	return NewFingerprint(ctypes.FPMACCS, data, nBits), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Topological path provider
// ─────────────────────────────────────────────────────────────────────────────

// topologicalProvider enumerates linear atom paths of bounded length and
// hashes each into the bit vector, after the Daylight path fingerprint.
type topologicalProvider struct {
	minPath int
	maxPath int
	nBits   int
}

func (p *topologicalProvider) Type() ctypes.FingerprintType { return ctypes.FPTopological }

func (p *topologicalProvider) Compute(smiles string) (*Fingerprint, error) {
	if smiles == "" {
		return nil, errors.New(errors.CodeCompoundInvalidSMILES, "SMILES string cannot be empty")
	}
	atoms := extractAtoms(smiles)
	if len(atoms) == 0 {
		return nil, errors.New(errors.CodeCompoundInvalidSMILES, "no atoms found in SMILES").
			WithDetail(smiles)
	}

	data := make([]byte, (p.nBits+7)/8)
	for pathLen := p.minPath; pathLen <= p.maxPath && pathLen <= len(atoms); pathLen++ {
		for i := 0; i+pathLen <= len(atoms); i++ {
			path := strings.Join(atoms[i:i+pathLen], "-")
			setRawBit(data, int(hashDescriptor(path)%uint64(p.nBits)))
		}
	}
	return NewFingerprint(ctypes.FPTopological, data, p.nBits), nil
}
