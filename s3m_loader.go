package modplayer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	s3mfxSetSpeed       = 0x1
	s3mfxPatternJump    = 0x2
	s3mfxPatternBreak   = 0x3
	s3mfxTonePortamento = 0x7
	s3mfxSpecial        = 0x13
)

// ErrInvalidS3M is returned by ReadS3M when the data doesn't carry the
// 'SCRM' tag at its fixed offset.
var ErrInvalidS3M = errors.New("modplayer: invalid S3M file")

// s3mPeriodTable is the standard one-octave Amiga period reference S3M
// notes are defined against (octave 4, C2Speed-relative).
var s3mPeriodTable = [12]int{1712, 1616, 1525, 1440, 1357, 1281, 1209, 1141, 1077, 1017, 961, 907}

// ReadS3M parses a ScreamTracker 3 module into the same period-based
// Song model ReadModule produces, so the mixer and effect engine never
// need to know which format a song came from. Notes carry an explicit
// octave+semitone pair rather than a raw period; they are converted
// here using each instrument's C2Speed (its natural C-4 playback rate)
// against the classic 8363Hz Amiga reference rate.
func ReadS3M(data []byte) (*Song, error) {
	if len(data) < 48 || string(data[44:48]) != "SCRM" {
		return nil, ErrInvalidS3M
	}

	song := &Song{Format: Format{HasTag: false}}
	r := bytes.NewReader(data)

	title := make([]byte, 28)
	if _, err := r.Read(title); err != nil {
		return nil, &LoadError{Kind: LoadErrorIO, Err: err}
	}
	song.Name = strings.TrimRight(string(title), "\x00")

	header := struct {
		Pad             byte
		Filetype        byte
		_               uint16
		Length          uint16
		NumInstruments  uint16
		NumPatterns     uint16
		Flags           uint16
		Tracker         uint16
		SampleFormat    uint16
		_               [4]byte
		Volume          uint8
		Speed           uint8
		Tempo           uint8
		MastVolume      uint8
		_               uint8
		Panning         uint8
		_               [8]byte
		_               [2]byte
		ChannelSettings [32]byte
	}{}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &LoadError{Kind: LoadErrorIO, Err: err}
	}

	numChannels := 0
	for numChannels < 32 && header.ChannelSettings[numChannels] != 255 {
		numChannels++
	}
	song.Format.NumChannels = numChannels

	orders := make([]byte, header.Length)
	if _, err := r.Read(orders); err != nil {
		return nil, &LoadError{Kind: LoadErrorIO, Err: err}
	}
	numOrders := 0
	for _, pos := range orders {
		if pos == 255 {
			break
		}
		if numOrders < 128 {
			song.PatternTable[numOrders] = int(pos)
		}
		numOrders++
	}
	song.NumUsedPatterns = numOrders

	paras := make([]uint16, int(header.NumInstruments)+int(header.NumPatterns))
	if err := binary.Read(r, binary.LittleEndian, paras); err != nil {
		return nil, &LoadError{Kind: LoadErrorIO, Err: err}
	}

	song.Format.NumSamples = int(header.NumInstruments)
	song.Samples = make([]Sample, header.NumInstruments)
	c2speeds := make([]int, header.NumInstruments)
	for i := range song.Samples {
		if _, err := r.Seek(int64(paras[i])*16, io.SeekStart); err != nil {
			return nil, &LoadError{Kind: LoadErrorIO, Err: err}
		}

		inst := struct {
			Type         byte
			Filename     [12]byte
			MemSegHi     byte
			MemSegLo     uint16
			SampleLength uint16
			_            uint16
			LoopBegin    uint16
			_            uint16
			LoopEnd      uint16
			_            uint16
			Volume       byte
			_            byte
			Packing      byte
			Flags        byte
			C2Speed      uint16
			_            uint16
			_            [12]byte
			Name         [28]byte
			Scrs         [4]byte
		}{}
		if err := binary.Read(r, binary.LittleEndian, &inst); err != nil {
			return nil, &LoadError{Kind: LoadErrorIO, Err: err}
		}
		if inst.Type > 1 {
			return nil, &LoadError{Kind: LoadErrorIO, Err: fmt.Errorf("unsupported sample type %d", inst.Type)}
		}
		if inst.Flags&4 == 4 {
			return nil, &LoadError{Kind: LoadErrorIO, Err: errors.New("16-bit samples not supported")}
		}

		c2speeds[i] = int(inst.C2Speed)
		smp := Sample{
			Name:         strings.TrimRight(string(inst.Name[:]), "\x00"),
			Size:         int(inst.SampleLength),
			RepeatOffset: int(inst.LoopBegin),
			RepeatSize:   int(inst.LoopEnd) - int(inst.LoopBegin),
			Volume:       ClampVolume(int(inst.Volume)),
			FineTune:     8,
		}

		dataOffset := (uint(inst.MemSegHi)<<16 | uint(inst.MemSegLo)) * 16
		smp.Data = make([]int8, smp.Size)
		if smp.Size > 0 {
			if _, err := r.Seek(int64(dataOffset), io.SeekStart); err != nil {
				return nil, &LoadError{Kind: LoadErrorIO, Err: err}
			}
			raw := make([]byte, smp.Size)
			if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
				return nil, &LoadError{Kind: LoadErrorIO, Err: err}
			}
			for j, b := range raw {
				smp.Data[j] = int8(b ^ 128) // unsigned -> signed
			}
		}

		song.Samples[i] = smp
	}

	song.Patterns = make([]Pattern, header.NumPatterns)
	for p := 0; p < int(header.NumPatterns); p++ {
		if _, err := r.Seek(int64(paras[int(header.NumInstruments)+p])*16, io.SeekStart); err != nil {
			return nil, &LoadError{Kind: LoadErrorIO, Err: err}
		}

		var packedLen int16
		if err := binary.Read(r, binary.LittleEndian, &packedLen); err != nil {
			return nil, &LoadError{Kind: LoadErrorIO, Err: err}
		}
		packedLen -= 2

		var pat Pattern
		for row := range pat.Rows {
			pat.Rows[row] = make([]Note, numChannels)
		}

		row := 0
		for packedLen > 0 && row < RowsPerPattern {
			b, err := r.ReadByte()
			if err != nil {
				return nil, &LoadError{Kind: LoadErrorIO, Err: err}
			}
			packedLen--
			if b == 0 {
				row++
				continue
			}

			chn := int(b & 31)
			if chn >= numChannels {
				skip := []int64{0, 2, 1, 3, 2, 4, 3, 5}[b>>5]
				r.Seek(skip, io.SeekCurrent)
				packedLen -= int16(skip)
				continue
			}

			note := &pat.Rows[row][chn]
			var sampleIdx int

			if b&32 == 32 {
				noter, _ := r.ReadByte()
				instr, _ := r.ReadByte()
				packedLen -= 2
				sampleIdx = int(instr)
				note.SampleNumber = sampleIdx
				if noter < 254 && sampleIdx >= 1 && sampleIdx <= len(c2speeds) {
					note.Period = s3mNoteToPeriod(noter, c2speeds[sampleIdx-1])
				}
			}

			if b&64 == 64 {
				vol, _ := r.ReadByte()
				packedLen--
				if note.Effect == nil {
					note.Effect = SetVolumeEffect{Volume: vol}
				}
			}

			if b&128 == 128 {
				efct, _ := r.ReadByte()
				parm, _ := r.ReadByte()
				packedLen -= 2
				eff, err := convertS3MEffect(efct, parm)
				if err != nil {
					return nil, &LoadError{Kind: LoadErrorUnknownEffect, Err: err}
				}
				if eff != nil {
					note.Effect = eff
				}
			}
		}

		song.Patterns[p] = pat
	}

	song.HasStandardNotes = false
	return song, nil
}

// s3mNoteToPeriod converts an S3M octave/semitone note byte (high
// nibble octave, low nibble semitone) into an Amiga-style period, scaled
// by the owning instrument's C2Speed against the classic 8363Hz
// reference rate. 254/255 are the note-cut/no-note markers.
func s3mNoteToPeriod(note byte, c2Speed int) int {
	if note >= 254 {
		return 0
	}
	if c2Speed <= 0 {
		c2Speed = 8363
	}
	octave := int(note >> 4)
	semitone := int(note & 0xF)
	if semitone > 11 {
		semitone = 11
	}
	base := s3mPeriodTable[semitone] * 8363 / c2Speed
	period := base >> uint(octave)
	return ClampPeriod(period)
}

func convertS3MEffect(code, param byte) (Effect, error) {
	switch code {
	case s3mfxSetSpeed:
		return SetSpeedEffect{Value: param}, nil
	case s3mfxPatternJump:
		return PositionJumpEffect{Position: param}, nil
	case s3mfxPatternBreak:
		row := param
		if row > 63 {
			row = 0
		}
		return PatternBreakEffect{Row: row}, nil
	case s3mfxTonePortamento:
		return TonePortamentoEffect{Speed: param, HasSpeed: param != 0}, nil
	case s3mfxSpecial:
		if param>>4 == 0xB {
			return PatternLoopEffect{Count: param & 0xF}, nil
		}
	}
	return nil, nil
}
