package blockcrypt

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelConfigValidate(t *testing.T) {
	cfg := DefaultParallelConfig()
	assert.NoError(t, cfg.Validate())

	cfg.MaxWorkers = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultParallelConfig()
	cfg.MaxWorkers = 2048
	assert.Error(t, cfg.Validate())

	cfg = DefaultParallelConfig()
	cfg.MinBlocksForParallel = 0
	assert.Error(t, cfg.Validate())

	disabled := ParallelConfig{}
	assert.NoError(t, disabled.Validate())
}

// Parallel dispatch must produce output identical to the sequential path.
func TestParallelMatchesSerial(t *testing.T) {
	payload := make([]byte, 8*512)
	for i := range payload {
		payload[i] = byte(i * 13)
	}
	key := []byte{7, 7, 7, 1, 2, 3, 4}

	for _, mode := range []EncryptionMode{ModeECB, ModeCTR} {
		iv := bytes.Repeat([]byte{0x33}, 8)
		if mode == ModeECB {
			iv = nil
		}

		serial, err := NewContext(NewDES(), key, mode, PaddingPKCS7, iv,
			WithParallelConfig(ParallelConfig{Enabled: false}))
		require.NoError(t, err)
		parallel, err := NewContext(NewDES(), key, mode, PaddingPKCS7, iv,
			WithParallelConfig(ParallelConfig{Enabled: true, MaxWorkers: 8, MinBlocksForParallel: 2}))
		require.NoError(t, err)

		// The serial and parallel contexts carry different random seeds, so
		// compare through chunk calls that share an explicit state.
		stSerial, err := serial.NewStreamState()
		require.NoError(t, err)
		stParallel, err := parallel.NewStreamState()
		require.NoError(t, err)
		if mode == ModeCTR {
			seed := bytes.Repeat([]byte{0x44}, 8)
			stSerial.Initial = append([]byte(nil), seed...)
			stParallel.Initial = append([]byte(nil), seed...)
		}

		want, err := serial.EncryptChunk(payload, stSerial)
		require.NoError(t, err)
		got, err := parallel.EncryptChunk(payload, stParallel)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%s parallel output", mode)
		assert.Equal(t, stSerial.Initial, stParallel.Initial, "%s carried state", mode)

		serial.Close()
		parallel.Close()
	}
}

// S6: ten goroutines share one initialized cipher through one context, each
// with its own chunk state; every task recovers its own buffer.
func TestParallelTasksShareCipher(t *testing.T) {
	cipher := NewDEAL()
	require.NoError(t, cipher.Initialize(bytes.Repeat([]byte{0x66}, 16)))
	iv := bytes.Repeat([]byte{0x12}, 16)

	ctx, err := NewContext(cipher, bytes.Repeat([]byte{0x66}, 16), ModeCBC, PaddingPKCS7, iv)
	require.NoError(t, err)
	defer ctx.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for task := 0; task < 10; task++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()

			payload := bytes.Repeat([]byte{seed}, 8*1024)
			// Each goroutine drives the shared cipher through its own
			// chunk state; the cipher's expanded key is read-only.
			st := &ModeState{Initial: append([]byte(nil), iv...), IsEnd: true}
			ct, err := ctx.EncryptChunk(payload, st)
			if err != nil {
				errs <- err
				return
			}
			st = &ModeState{Initial: append([]byte(nil), iv...), IsEnd: true}
			pt, err := ctx.DecryptChunk(ct, st)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(pt, payload) {
				errs <- assert.AnError
			}
		}(byte(0x41 + task)) // fill bytes above the pad-length range
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("parallel task failed: %v", err)
	}
}
