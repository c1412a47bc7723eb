package peer

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethershare/aether/internal/beam"
	"github.com/aethershare/aether/internal/logging"
)

// memSignaler is an in-process signaling pair for tests.
type memSignaler struct {
	in  <-chan string
	out chan<- string
}

func newSignalerPair() (*memSignaler, *memSignaler) {
	a2b := make(chan string, 8)
	b2a := make(chan string, 8)
	return &memSignaler{in: b2a, out: a2b}, &memSignaler{in: a2b, out: b2a}
}

func (m *memSignaler) SendSignal(ctx context.Context, payload string) error {
	select {
	case m.out <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memSignaler) ReceiveSignal(ctx context.Context) (string, error) {
	select {
	case s := <-m.in:
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestReceiveDescription_RejectsGarbage(t *testing.T) {
	ctx := context.Background()
	c := &RTCChannel{}

	sigA, sigB := newSignalerPair()
	require.NoError(t, sigB.SendSignal(ctx, "not json"))
	_, err := c.receiveDescription(ctx, sigA)
	assert.Error(t, err)

	require.NoError(t, sigB.SendSignal(ctx, `{"type":"rollback","sdp":"v=0"}`))
	_, err = c.receiveDescription(ctx, sigA)
	assert.Error(t, err)
}

// TestConnectRTC_LoopbackTransfer establishes a real peer connection over
// the loopback interface. It needs UDP sockets, so it only runs when
// AETHER_RTC_TEST=1 is set.
func TestConnectRTC_LoopbackTransfer(t *testing.T) {
	if os.Getenv("AETHER_RTC_TEST") != "1" {
		t.Skip("set AETHER_RTC_TEST=1 to run the loopback WebRTC test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	log := logging.NewNopLogger()

	sigA, sigB := newSignalerPair()

	var (
		wg       sync.WaitGroup
		offerCh  *RTCChannel
		answerCh *RTCChannel
		errA     error
		errB     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		offerCh, errA = ConnectRTC(ctx, sigA, true, log)
	}()
	go func() {
		defer wg.Done()
		answerCh, errB = ConnectRTC(ctx, sigB, false, log)
	}()
	wg.Wait()

	require.NoError(t, errA)
	require.NoError(t, errB)
	defer offerCh.Close()
	defer answerCh.Close()

	const total = 200_000
	src := make([]byte, total)
	rnd := rand.New(rand.NewSource(3))
	rnd.Read(src)

	sess := beam.NewSession(log)
	recv := beam.NewReceiver(log)

	wg.Add(1)
	var sendErr error
	go func() {
		defer wg.Done()
		sender := beam.NewSender(log, 0)
		sendErr = sender.SendStream(ctx, bytes.NewReader(src),
			&beam.Meta{Name: "direct.bin", Size: total}, offerCh, nil)
	}()

	err := recv.Receive(ctx, answerCh, sess, nil)
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, err)

	got, err := sess.Bytes()
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

// TestConnectRTC_FlushBeforeClose closes the sending channel immediately
// after the final chunk, the way the beam service tears down. Without a
// flush to zero, up to a threshold's worth of queued frames dies with the
// connection and the receiver reports an aborted transfer. Needs UDP
// sockets, so it only runs when AETHER_RTC_TEST=1 is set.
func TestConnectRTC_FlushBeforeClose(t *testing.T) {
	if os.Getenv("AETHER_RTC_TEST") != "1" {
		t.Skip("set AETHER_RTC_TEST=1 to run the loopback WebRTC test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	log := logging.NewNopLogger()

	sigA, sigB := newSignalerPair()

	var (
		wg       sync.WaitGroup
		offerCh  *RTCChannel
		answerCh *RTCChannel
		errA     error
		errB     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		offerCh, errA = ConnectRTC(ctx, sigA, true, log)
	}()
	go func() {
		defer wg.Done()
		answerCh, errB = ConnectRTC(ctx, sigB, false, log)
	}()
	wg.Wait()

	require.NoError(t, errA)
	require.NoError(t, errB)
	defer answerCh.Close()

	const total = 2_000_000
	src := make([]byte, total)
	rnd := rand.New(rand.NewSource(7))
	rnd.Read(src)

	sess := beam.NewSession(log)
	recv := beam.NewReceiver(log)

	wg.Add(1)
	var sendErr error
	go func() {
		defer wg.Done()
		sender := beam.NewSender(log, 0)
		sendErr = sender.SendStream(ctx, bytes.NewReader(src),
			&beam.Meta{Name: "tail.bin", Size: total}, offerCh, nil)
		if sendErr == nil {
			sendErr = offerCh.Flush(ctx)
		}
		offerCh.Close()
	}()

	err := recv.Receive(ctx, answerCh, sess, nil)
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, err, "the tail of the transfer must arrive before close")

	got, err := sess.Bytes()
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
