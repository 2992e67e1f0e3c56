// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package diag implements the diagnostic sink of decoding sessions: text
// records of the negotiated parameters appended to fixed-named files of a
// directory. Writing is best-effort and errors are ignored.
package diag

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sqreen/go-dxvahook/abi"
)

// File names of the diagnostic sink.
const (
	MainFile      = "dxva_ipinhook.log"
	PictureFile   = "picture.log"
	SliceLongFile = "slicelong.log"
	SliceFile     = "sliceshort.log"
	BitstreamFile = "bitstream.log"
)

var files = [...]string{MainFile, PictureFile, SliceLongFile, SliceFile, BitstreamFile}

// Logger is the diagnostic sink interface. The disabled logger is returned by
// Disabled() and does nothing.
type Logger interface {
	// Enabled returns false when every call of the logger is a no-op.
	Enabled() bool
	// Log appends a line to the main file.
	Log(format string, v ...interface{})
	// LogLines appends the lines to the main file at once.
	LogLines(lines []string)
	// Reset removes the files and restarts the session, so that headers are
	// written again.
	Reset()

	PicParamsH264(p *abi.PicParamsH264)
	PictureParameters(p *abi.PictureParameters)
	SlicesH264Short(slices []abi.SliceH264Short)
	SlicesH264Long(slices []abi.SliceH264Long)
	SliceInfos(slices []abi.SliceInfo)
	// Bitstream appends the record of a bitstream buffer of declared size
	// `size` whose available bytes are `b`.
	Bitstream(size int, b []byte)

	// DumpBitstream and DumpMatrix write the raw buffer into a new numbered
	// file when the corresponding dump is enabled.
	DumpBitstream(b []byte)
	DumpMatrix(b []byte)
}

// Lines appends every line to the main file.
func Lines(l Logger, lines []string) {
	if len(lines) == 0 {
		return
	}
	l.LogLines(lines)
}

func Disabled() Logger { return disabledLogger{} }

type disabledLogger struct{}

func (disabledLogger) Enabled() bool                            { return false }
func (disabledLogger) Log(string, ...interface{})               {}
func (disabledLogger) LogLines([]string)                        {}
func (disabledLogger) Reset()                                   {}
func (disabledLogger) PicParamsH264(*abi.PicParamsH264)         {}
func (disabledLogger) PictureParameters(*abi.PictureParameters) {}
func (disabledLogger) SlicesH264Short([]abi.SliceH264Short)     {}
func (disabledLogger) SlicesH264Long([]abi.SliceH264Long)       {}
func (disabledLogger) SliceInfos([]abi.SliceInfo)               {}
func (disabledLogger) Bitstream(int, []byte)                    {}
func (disabledLogger) DumpBitstream([]byte)                     {}
func (disabledLogger) DumpMatrix([]byte)                        {}

// Options of the file logger.
type Options struct {
	// Dir is the directory of the files.
	Dir string
	// DumpBitstream enables the raw bitstream dumps.
	DumpBitstream bool
	// DumpMatrix enables the raw inverse quantization matrix dumps.
	DumpMatrix bool
}

// Record kinds, each having its own header.
type recordKind int

const (
	recordPicParamsH264 recordKind = iota
	recordPictureParameters
	recordSliceH264Short
	recordSliceH264Long
	recordSliceInfo
	recordBitstream
	recordKinds
)

type fileLogger struct {
	opts Options

	// Records come from the streaming thread while Reset comes from the
	// control thread.
	mu      sync.Mutex
	headers [recordKinds]bool
	// Dump counters are never reset so that a new session doesn't overwrite
	// the dumps of the previous ones.
	bitstreamDumps, matrixDumps int
}

// NewFileLogger returns a logger appending to the files of directory
// `opts.Dir`.
func NewFileLogger(opts Options) Logger {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return &fileLogger{opts: opts}
}

func (*fileLogger) Enabled() bool { return true }

func (l *fileLogger) Log(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLines(MainFile, fmt.Sprintf(format, v...))
}

func (l *fileLogger) LogLines(lines []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLines(MainFile, lines...)
}

func (l *fileLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, file := range files {
		_ = os.Remove(l.path(file))
	}
	l.headers = [recordKinds]bool{}
}

func (l *fileLogger) PicParamsH264(p *abi.PicParamsH264) {
	if p == nil {
		return
	}
	l.records(recordPicParamsH264, PictureFile, PicParamsH264Header, PicParamsH264Record(p))
}

func (l *fileLogger) PictureParameters(p *abi.PictureParameters) {
	if p == nil {
		return
	}
	l.records(recordPictureParameters, PictureFile, PictureParametersHeader, PictureParametersRecord(p))
}

func (l *fileLogger) SlicesH264Short(slices []abi.SliceH264Short) {
	records := make([]string, len(slices))
	for i := range slices {
		records[i] = SliceH264ShortRecord(i, &slices[i])
	}
	l.records(recordSliceH264Short, SliceFile, SliceH264ShortHeader, records...)
}

func (l *fileLogger) SlicesH264Long(slices []abi.SliceH264Long) {
	records := make([]string, len(slices))
	for i := range slices {
		records[i] = SliceH264LongRecord(i, &slices[i])
	}
	l.records(recordSliceH264Long, SliceLongFile, SliceH264LongHeader, records...)
}

func (l *fileLogger) SliceInfos(slices []abi.SliceInfo) {
	records := make([]string, len(slices))
	for i := range slices {
		records[i] = SliceInfoRecord(i, &slices[i])
	}
	l.records(recordSliceInfo, SliceFile, SliceInfoHeader, records...)
}

func (l *fileLogger) Bitstream(size int, b []byte) {
	l.records(recordBitstream, BitstreamFile, BitstreamHeader, BitstreamRecord(size, b))
}

func (l *fileLogger) DumpBitstream(b []byte) {
	if !l.opts.DumpBitstream {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bitstreamDumps++
	_ = ioutil.WriteFile(l.path(fmt.Sprintf("BitStream%d.bin", l.bitstreamDumps)), b, 0644)
}

func (l *fileLogger) DumpMatrix(b []byte) {
	if !l.opts.DumpMatrix {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.matrixDumps++
	_ = ioutil.WriteFile(l.path(fmt.Sprintf("Matrix%d.bin", l.matrixDumps)), b, 0644)
}

// records appends the records to the file, preceded by the header the first
// time in the session.
func (l *fileLogger) records(kind recordKind, file, header string, records ...string) {
	if len(records) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.headers[kind] {
		l.headers[kind] = true
		records = append([]string{header}, records...)
	}
	l.appendLines(file, records...)
}

// appendLines appends the lines to the file with a single write.
func (l *fileLogger) appendLines(file string, lines ...string) {
	if len(lines) == 0 {
		return
	}
	f, err := os.OpenFile(l.path(file), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = io.WriteString(f, strings.Join(lines, "\n")+"\n")
}

func (l *fileLogger) path(file string) string {
	return filepath.Join(l.opts.Dir, file)
}
