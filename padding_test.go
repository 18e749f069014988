package blockbreak

import (
	"bytes"
	"encoding/hex"
	"errors"
	"log"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manelmontilla/blockbreak/crypto"
	"github.com/manelmontilla/blockbreak/oracle"
)

type testOracle struct {
	key []byte
}

func (t testOracle) CheckPadding(iv, c []byte) (bool, error) {
	_, err := crypto.DecryptCBC(t.key, iv, c)
	if err != nil && err != crypto.ErrInvalidPad {
		return false, err
	}
	if err == crypto.ErrInvalidPad {
		return false, nil
	}
	return true, nil
}

var errBroken = errors.New("broken oracle")

// brokenOracle fails after a number of queries, like a server going away.
type brokenOracle struct {
	testOracle
	left int32
}

func (b *brokenOracle) CheckPadding(iv, c []byte) (bool, error) {
	if atomic.AddInt32(&b.left, -1) < 0 {
		return false, errBroken
	}
	return b.testOracle.CheckPadding(iv, c)
}

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	return b
}

func Test_decryptBlock(t *testing.T) {
	key := fromHex(t, "ee581a043ac19191c7d551710bab13a9")
	iv := fromHex(t, "91db4482c4ffa9858338ab0e98ddf96c")
	msg := "Hello world"
	ct := crypto.EncryptCBC(key, iv, []byte(msg))
	a := NewPaddingAttack(testOracle{key: key}, nil)
	m, err := a.decryptBlock(iv, ct[0:DefaultBlockSize])
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	m, err = crypto.Unpad(m)
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
	if string(m) != msg {
		t.Errorf("invalid clear text message, got %s", string(m))
	}
}

func TestPaddingAttack_Decrypt(t *testing.T) {
	type args struct {
		iv, c []byte
		a     *PaddingAttack
	}
	fixed := func(msg string, policy MatchPolicy, workers int) func(*testing.T) args {
		return func(t *testing.T) args {
			key := fromHex(t, "ee581a043ac19191c7d551710bab13a9")
			iv := fromHex(t, "91db4482c4ffa9858338ab0e98ddf96c")
			c := crypto.EncryptCBC(key, iv, []byte(msg))
			var l log.Logger
			l.SetOutput(&bytes.Buffer{})
			a := &PaddingAttack{
				Oracle:  testOracle{key: key},
				Policy:  policy,
				Workers: workers,
				Logger:  &l,
			}
			return args{iv, c, a}
		}
	}
	tests := []struct {
		name        string
		argsBuilder func(*testing.T) args
		want        string
		wantErr     bool
	}{
		{
			name:        "DecryptsMessageWithMultipleBlocks",
			argsBuilder: fixed("Somewhere in la Mancha, in a place whose name", ConfirmMatch, 0),
			want:        "Somewhere in la Mancha, in a place whose name",
		},
		{
			name:        "DecryptsAlignedMessage",
			argsBuilder: fixed("YELLOW SUBMARINEYELLOW SUBMARINE", ConfirmMatch, 1),
			want:        "YELLOW SUBMARINEYELLOW SUBMARINE",
		},
		{
			name:        "FirstMatchOnText",
			argsBuilder: fixed("Somewhere in la Mancha, in a place whose name", FirstMatch, 4),
			want:        "Somewhere in la Mancha, in a place whose name",
		},
		{
			name:        "LastMatchOnText",
			argsBuilder: fixed("Somewhere in la Mancha, in a place whose name", LastMatch, 4),
			want:        "Somewhere in la Mancha, in a place whose name",
		},
		{
			name:        "AdaptiveMatchOnText",
			argsBuilder: fixed("Somewhere in la Mancha, in a place whose name", AdaptiveMatch, 4),
			want:        "Somewhere in la Mancha, in a place whose name",
		},
		{
			name:        "ConfirmsAmbiguousLastByte",
			argsBuilder: fixed("AAAAAAAAAAAAAA\x02ZAAAAAAAAAAAAAA\x02\x01the end", ConfirmMatch, 0),
			want:        "AAAAAAAAAAAAAA\x02ZAAAAAAAAAAAAAA\x02\x01the end",
		},
		{
			name: "RejectsTruncatedCiphertext",
			argsBuilder: func(t *testing.T) args {
				a := fixed("Hello world", ConfirmMatch, 0)(t)
				a.c = a.c[:len(a.c)-1]
				return a
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.argsBuilder(t)
			got, err := args.a.Decrypt(args.iv, args.c)
			if (err != nil) != tt.wantErr {
				t.Errorf("Decrypt() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			got, err = crypto.Unpad(got)
			if err != nil {
				t.Error(err)
				return
			}
			if string(got) != tt.want {
				t.Errorf("Decrypt() = %+v, want %+v", got, []byte(tt.want))
			}
		})
	}
}

func TestPaddingAttack_FirstMatchIsFooledByTrailingPad(t *testing.T) {
	// The block ends in 0x02 0x01: the untouched helper is the real answer
	// and the only other valid candidate turns the block into 0x02 0x02.
	key := fromHex(t, "ee581a043ac19191c7d551710bab13a9")
	iv := fromHex(t, "91db4482c4ffa9858338ab0e98ddf96c")
	msg := []byte("AAAAAAAAAAAAAA\x02\x01")
	c := crypto.EncryptCBC(key, iv, msg)

	first := &PaddingAttack{Oracle: testOracle{key: key}, Policy: FirstMatch}
	got, err := first.Decrypt(iv, c[:DefaultBlockSize])
	require.NoError(t, err)
	assert.NotEqual(t, msg, got)

	confirm := &PaddingAttack{Oracle: testOracle{key: key}, Policy: ConfirmMatch}
	got, err = confirm.Decrypt(iv, c[:DefaultBlockSize])
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestPaddingAttack_RandomPlaintexts(t *testing.T) {
	for i := 0; i < 5; i++ {
		l, err := oracle.RandomInt(4 * DefaultBlockSize)
		require.NoError(t, err)
		msg, err := crypto.RandomBytes(l + 1)
		require.NoError(t, err)
		s, err := oracle.NewSecret(nil, msg)
		require.NoError(t, err)
		o, err := oracle.NewPadding(s)
		require.NoError(t, err)

		iv, c := o.Ciphertext()
		got, err := NewPaddingAttack(o, nil).Decrypt(iv, c)
		require.NoError(t, err)
		require.Equal(t, crypto.Pad(msg, DefaultBlockSize), got, "trial %d", i)
	}
}

func TestPaddingAttack_Forge(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := []byte("Rollin' in my 5.0 with my rag-top down so my hair can blow")

	iv, c, err := NewPaddingAttack(testOracle{key: key}, nil).Forge(want)
	require.NoError(t, err)
	got, err := crypto.DecryptCBC(key, iv, c)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPaddingAttack_OracleError(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	iv := make([]byte, DefaultBlockSize)
	c := crypto.EncryptCBC(key, iv, []byte("Hello world"))
	q := &brokenOracle{testOracle: testOracle{key: key}, left: 300}

	_, err = NewPaddingAttack(q, nil).Decrypt(iv, c)
	assert.ErrorIs(t, err, errBroken)
}

func TestPaddingAttack_OverHTTP(t *testing.T) {
	s, err := oracle.NewSecret(nil, []byte("MDAwMDAwTm93IHRoYXQgdGhlIHBhcnR5"))
	require.NoError(t, err)
	o, err := oracle.NewPadding(s)
	require.NoError(t, err)
	srv := httptest.NewServer(oracle.PaddingHandler(o, nil))
	defer srv.Close()

	iv, c := o.Ciphertext()
	a := NewPaddingAttack(oracle.NewHTTPChecker(srv.URL, 5*time.Second), nil)
	a.Workers = 4
	got, err := a.Decrypt(iv, c)
	require.NoError(t, err)
	got, err = crypto.Unpad(got)
	require.NoError(t, err)
	assert.Equal(t, o.Plaintext(), got)
}

func TestMatchPolicy_String(t *testing.T) {
	assert.Equal(t, "confirm", ConfirmMatch.String())
	assert.Equal(t, "adaptive", AdaptiveMatch.String())
	assert.Equal(t, "MatchPolicy(9)", MatchPolicy(9).String())
}
