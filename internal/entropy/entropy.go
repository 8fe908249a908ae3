// Package entropy implements the Shannon entropy classifier: per-file and
// per-sequence entropy estimation, and the size-aware classification into
// Plain/Binary/Encrypted/Unknown.
package entropy

import (
	"bufio"
	"math"
	"os"
	"sync/atomic"

	"fileshredder_enterprise/internal/capability"
	"fileshredder_enterprise/internal/model"
)

const readBufferSize = 64 * 1024

// Interrupt is the process-wide entropy interrupt flag. It is read inside
// every tight loop of the classifier; setting it aborts in-flight work with
// the sentinel UnknownEntropy result. Modeled as a shared atomic int32
// rather than the source's racy plain bool (see DESIGN.md).
type Interrupt struct {
	flag int32
}

// Set raises the interrupt flag.
func (i *Interrupt) Set() { atomic.StoreInt32(&i.flag, 1) }

// Clear lowers the interrupt flag, starting a new classification lifecycle.
func (i *Interrupt) Clear() { atomic.StoreInt32(&i.flag, 0) }

// IsSet reports whether the flag is currently raised.
func (i *Interrupt) IsSet() bool { return atomic.LoadInt32(&i.flag) != 0 }

// Checker estimates Shannon entropy of a file or in-memory sequence. A
// Checker is not shared across concurrent classifications; the coordinator
// creates a fresh one per update_entropy task.
type Checker struct {
	Interrupt *Interrupt
	Callback  capability.ProgressCallback
}

// New creates a Checker bound to a shared process-wide interrupt flag and
// an optional progress callback.
func New(interrupt *Interrupt, cb capability.ProgressCallback) *Checker {
	return &Checker{Interrupt: interrupt, Callback: cb}
}

// FileEntropy reads path in 64 KiB chunks, tallies a byte-frequency
// histogram and returns its Shannon entropy. Returns model.UnknownEntropy
// if interrupted mid-read or if the file cannot be opened. Zero-length
// files return 0.0.
func (c *Checker) FileEntropy(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return model.UnknownEntropy
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.UnknownEntropy
	}
	size := info.Size()

	if c.Callback != nil {
		c.Callback.Init(size)
	}
	if size == 0 {
		return 0.0
	}

	reportEvery := size / 100
	if reportEvery < 1024 {
		reportEvery = 1024
	}

	var histogram [256]int64
	var read int64
	var sinceReport int64

	r := bufio.NewReaderSize(f, readBufferSize)
	buf := make([]byte, readBufferSize)
	for {
		if c.Interrupt != nil && c.Interrupt.IsSet() {
			return model.UnknownEntropy
		}
		n, rerr := r.Read(buf)
		for i := 0; i < n; i++ {
			histogram[buf[i]]++
		}
		read += int64(n)
		sinceReport += int64(n)
		if c.Callback != nil && sinceReport >= reportEvery {
			c.Callback.Progress(read)
			sinceReport = 0
		}
		if rerr != nil {
			break
		}
	}

	return shannon(histogram[:], read)
}

// SequenceEntropy computes the Shannon entropy of an in-memory byte slice
// using the same formula as FileEntropy.
func (c *Checker) SequenceEntropy(data []byte) float64 {
	var histogram [256]int64
	for _, b := range data {
		histogram[b]++
	}
	return shannon(histogram[:], int64(len(data)))
}

func shannon(histogram []int64, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	var h float64
	for _, count := range histogram {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// epsilon returns the size-dependent tolerance distinguishing encrypted
// from merely high-entropy binary data.
func epsilon(size int64) float64 {
	const mib = 1 << 20
	switch {
	case size < 1*mib:
		return 1e-3
	case size < 64*mib:
		return 1e-4
	case size < 512*mib:
		return 1e-5
	default:
		return 1e-6
	}
}

// Estimate classifies an entropy/size pair per the epsilon table.
func Estimate(entropy float64, size int64) model.Classification {
	if entropy == model.UnknownEntropy {
		return model.Unknown
	}
	if 8.0-entropy < epsilon(size) {
		return model.Encrypted
	}
	if entropy > 6.0 {
		return model.Binary
	}
	return model.Plain
}

// MinCompressedSize returns floor(entropy*size/8), the minimum size a
// payload of this entropy could compress to.
func MinCompressedSize(entropy float64, size int64) int64 {
	return int64(math.Floor(entropy * float64(size) / 8.0))
}
