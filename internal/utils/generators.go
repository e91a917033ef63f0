package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TrackingPrefix starts every externally shared tracking number.
const TrackingPrefix = "LMI"

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	trackingMu     sync.Mutex
	lastTrackingMs int64
)

// GenerateTrackingNumber builds a tracking number: the LMI prefix, the
// current unix milliseconds in uppercase base36, and 3 random base36
// characters. The millisecond component is strictly monotonic within the
// process, so sequential generation never repeats; the storage unique
// constraint remains the race-free check across processes.
func GenerateTrackingNumber() string {
	trackingMu.Lock()
	ms := time.Now().UnixMilli()
	if ms <= lastTrackingMs {
		ms = lastTrackingMs + 1
	}
	lastTrackingMs = ms
	trackingMu.Unlock()

	timestamp := strings.ToUpper(strconv.FormatInt(ms, 36))

	var sb strings.Builder
	sb.WriteString(TrackingPrefix)
	sb.WriteString(timestamp)
	for i := 0; i < 3; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
		if err != nil {
			// crypto/rand should not fail; fall back to a time-derived char
			sb.WriteByte(base36Alphabet[time.Now().UnixNano()%36])
			continue
		}
		sb.WriteByte(base36Alphabet[n.Int64()])
	}
	return sb.String()
}
