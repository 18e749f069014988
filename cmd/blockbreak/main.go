// Command blockbreak runs every attack of the blockbreak package against a
// freshly keyed oracle and checks the recovered secret against the oracle's
// ground truth.
//
// Usage:
//
//	blockbreak [-v] [-run 12,17] [-workers n] [-timeout d]
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manelmontilla/blockbreak"
	"github.com/manelmontilla/blockbreak/crypto"
	"github.com/manelmontilla/blockbreak/oracle"
)

var (
	runFlag = flag.String("run", "", "comma separated challenge numbers to run, all if empty")
	verbose = flag.Bool("v", false, "log attack progress to stderr")
	workers = flag.Int("workers", blockbreak.DefaultWorkers, "padding oracle workers")
	timeout = flag.Duration("timeout", 5*time.Second, "timeout of each HTTP padding oracle query")
)

type challenge struct {
	number int
	name   string
	// run returns the recovered value and the value it should be.
	run func(l *log.Logger) (got, want []byte, err error)
}

var challenges = []challenge{
	{8, "detect AES in ECB mode", detectECBLine},
	{9, "PKCS#7 padding", pkcs7Pad},
	{11, "ECB/CBC detection oracle", detectMode},
	{12, "byte-at-a-time ECB decryption", byteAtATime},
	{13, "ECB cut-and-paste", cutAndPaste},
	{14, "byte-at-a-time ECB decryption with prefix", byteAtATimePrefix},
	{15, "PKCS#7 padding validation", paddingValidation},
	{16, "CBC bitflipping", cbcBitflip},
	{17, "CBC padding oracle", paddingOracle},
	{17, "CBC padding oracle over HTTP", paddingOracleHTTP},
	{18, "CTR decryption", ctrVectorDecrypt},
	{25, "CTR random access read/write", ctrEdit},
	{26, "CTR bitflipping", ctrBitflip},
	{27, "CBC with IV equal to key", ivKey},
}

func main() {
	flag.Parse()
	l := log.New(io.Discard, "", 0)
	if *verbose {
		l = log.New(os.Stderr, "blockbreak: ", log.LstdFlags)
	}
	selected, err := parseRun(*runFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	failed := 0
	for _, c := range challenges {
		if len(selected) > 0 && !selected[c.number] {
			continue
		}
		start := time.Now()
		got, want, err := c.run(l)
		switch {
		case err != nil:
			failed++
			fmt.Printf("FAIL %2d %s: %v\n", c.number, c.name, err)
		case !bytes.Equal(got, want):
			failed++
			fmt.Printf("FAIL %2d %s: got %q, want %q\n", c.number, c.name, got, want)
		default:
			fmt.Printf("ok   %2d %s (%v)\n", c.number, c.name, time.Since(start).Round(time.Millisecond))
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func parseRun(s string) (map[int]bool, error) {
	selected := make(map[int]bool)
	if s == "" {
		return selected, nil
	}
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid -run value %q", f)
		}
		selected[n] = true
	}
	return selected, nil
}

// detectECBLine checks that the line known to be ECB encrypted has repeated
// blocks.
func detectECBLine(l *log.Logger) ([]byte, []byte, error) {
	c, err := hex.DecodeString(ecbLine)
	if err != nil {
		return nil, nil, fmt.Errorf("decode hex: %w", err)
	}
	if !blockbreak.DetectECB(c, blockbreak.DefaultBlockSize) {
		return nil, []byte(ecbLine), nil
	}
	return []byte(ecbLine), []byte(ecbLine), nil
}

func pkcs7Pad(l *log.Logger) ([]byte, []byte, error) {
	return crypto.Pad([]byte("YELLOW SUBMARINE"), 20), []byte("YELLOW SUBMARINE\x04\x04\x04\x04"), nil
}

func detectMode(l *log.Logger) ([]byte, []byte, error) {
	const trials = 100
	right := 0
	for i := 0; i < trials; i++ {
		s, err := oracle.NewSecret(nil, nil)
		if err != nil {
			return nil, nil, err
		}
		o, err := oracle.NewMode(s)
		if err != nil {
			return nil, nil, err
		}
		ecb, err := blockbreak.IsECB(o, blockbreak.DefaultBlockSize)
		if err != nil {
			return nil, nil, err
		}
		if ecb == o.IsECB() {
			right++
		}
	}
	l.Printf("guessed %d of %d modes", right, trials)
	return []byte(strconv.Itoa(right)), []byte(strconv.Itoa(trials)), nil
}

func byteAtATime(l *log.Logger) ([]byte, []byte, error) {
	return suffixAttack(l, nil)
}

func byteAtATimePrefix(l *log.Logger) ([]byte, []byte, error) {
	prefix, err := oracle.RandomPadding(1, 64)
	if err != nil {
		return nil, nil, err
	}
	return suffixAttack(l, prefix)
}

func suffixAttack(l *log.Logger, prefix []byte) ([]byte, []byte, error) {
	s, err := oracle.NewSecretBase64(prefix, lyric)
	if err != nil {
		return nil, nil, err
	}
	o := oracle.NewECB(s)
	a := blockbreak.SuffixAttack{Oracle: o, Logger: l}
	got, err := a.Recover()
	return got, o.Suffix(), err
}

func cutAndPaste(l *log.Logger) ([]byte, []byte, error) {
	s, err := oracle.NewSecret(nil, nil)
	if err != nil {
		return nil, nil, err
	}
	o := oracle.NewProfile(s)
	c, err := blockbreak.CutAndPaste(o, blockbreak.DefaultBlockSize, []byte("admin"), len("user"))
	if err != nil {
		return nil, nil, err
	}
	role, err := o.Role(c)
	return []byte(role), []byte("admin"), err
}

func paddingValidation(l *log.Logger) ([]byte, []byte, error) {
	for _, bad := range []string{"ICE ICE BABY\x05\x05\x05\x05", "ICE ICE BABY\x01\x02\x03\x04"} {
		if _, err := crypto.Unpad([]byte(bad)); !errors.Is(err, crypto.ErrInvalidPad) {
			return nil, nil, fmt.Errorf("%q: got error %v, want %v", bad, err, crypto.ErrInvalidPad)
		}
	}
	got, err := crypto.Unpad([]byte("ICE ICE BABY\x04\x04\x04\x04"))
	return got, []byte("ICE ICE BABY"), err
}

func cbcBitflip(l *log.Logger) ([]byte, []byte, error) {
	s, err := oracle.NewSecret(nil, nil)
	if err != nil {
		return nil, nil, err
	}
	o, err := oracle.NewUserDataCBC(s)
	if err != nil {
		return nil, nil, err
	}
	c, err := blockbreak.FlipCBC(o, blockbreak.DefaultBlockSize, []byte(";admin=true;"))
	if err != nil {
		return nil, nil, err
	}
	return isAdmin(o, c)
}

func ctrBitflip(l *log.Logger) ([]byte, []byte, error) {
	s, err := oracle.NewSecret(nil, nil)
	if err != nil {
		return nil, nil, err
	}
	o, err := oracle.NewUserDataCTR(s)
	if err != nil {
		return nil, nil, err
	}
	c, err := blockbreak.FlipCTR(o, []byte(";admin=true;"))
	if err != nil {
		return nil, nil, err
	}
	return isAdmin(o, c)
}

func isAdmin(o *oracle.UserData, c []byte) ([]byte, []byte, error) {
	ok, err := o.IsAdmin(c)
	return []byte(strconv.FormatBool(ok)), []byte("true"), err
}

func paddingOracle(l *log.Logger) ([]byte, []byte, error) {
	s, err := randomPaddingLine()
	if err != nil {
		return nil, nil, err
	}
	o, err := oracle.NewPadding(s)
	if err != nil {
		return nil, nil, err
	}
	return decryptPadding(l, o, o)
}

// paddingOracleHTTP serves the padding oracle on a loopback port and attacks
// it through an HTTP client.
func paddingOracleHTTP(l *log.Logger) ([]byte, []byte, error) {
	s, err := randomPaddingLine()
	if err != nil {
		return nil, nil, err
	}
	o, err := oracle.NewPadding(s)
	if err != nil {
		return nil, nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{
		Handler:      oracle.PaddingHandler(o, l),
		ReadTimeout:  *timeout,
		WriteTimeout: *timeout,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Printf("padding oracle server: %v", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			l.Printf("padding oracle shutdown: %v", err)
		}
	}()
	l.Printf("padding oracle listening on %s", ln.Addr())

	h := oracle.NewHTTPChecker("http://"+ln.Addr().String()+"/", *timeout)
	return decryptPadding(l, o, h)
}

func decryptPadding(l *log.Logger, o *oracle.Padding, q blockbreak.PaddingChecker) ([]byte, []byte, error) {
	a := blockbreak.NewPaddingAttack(q, l)
	a.Workers = *workers
	iv, c := o.Ciphertext()
	m, err := a.Decrypt(iv, c)
	if err != nil {
		return nil, nil, err
	}
	got, err := crypto.Unpad(m)
	return got, o.Plaintext(), err
}

func ctrVectorDecrypt(l *log.Logger) ([]byte, []byte, error) {
	c, err := decodeBase64(ctrVector)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, crypto.NonceSize)
	return crypto.DecryptCTR([]byte(ctrVectorKey), nonce, c), []byte(ctrVectorPT), nil
}

func ctrEdit(l *log.Logger) ([]byte, []byte, error) {
	s, err := oracle.NewSecretBase64(nil, lyric)
	if err != nil {
		return nil, nil, err
	}
	o, err := oracle.NewEdit(s)
	if err != nil {
		return nil, nil, err
	}
	got, err := blockbreak.RecoverCTR(o, o.Ciphertext())
	return got, o.Plaintext(), err
}

func ivKey(l *log.Logger) ([]byte, []byte, error) {
	s, err := oracle.NewSecret(nil, nil)
	if err != nil {
		return nil, nil, err
	}
	o := oracle.NewIVKey(s)
	key, err := blockbreak.RecoverIVKey(o, o, blockbreak.DefaultBlockSize)
	return key, o.Key(), err
}
