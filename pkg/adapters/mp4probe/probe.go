// Package mp4probe reads video stream properties from MP4 containers without decoding frames.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec names a video codec family.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecH265    Codec = "h265"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Info describes the first video track of a file.
type Info struct {
	Codec      Codec
	Width      int
	Height     int
	FrameRate  float64 // 0 when the track carries no timing
	FrameCount int
	Duration   float64 // seconds
	Timescale  uint32
	Fragmented bool
}

// ProbeFile probes the MP4 file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe probes an MP4 stream. Media data is not loaded.
func Probe(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		if mp4File.Init == nil || mp4File.Init.Moov == nil {
			return Info{}, ErrNoVideoTrack
		}
		trak := videoTrack(mp4File.Init.Moov.Traks)
		if trak == nil {
			return Info{}, ErrNoVideoTrack
		}
		info := trackInfo(trak)
		info.Fragmented = true
		countFragments(mp4File, trak.Tkhd.TrackID, trexFor(mp4File.Init.Moov, trak.Tkhd.TrackID), &info)
		return info, nil
	}

	if mp4File.Moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	trak := videoTrack(mp4File.Moov.Traks)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}
	return trackInfo(trak), nil
}

func videoTrack(traks []*mp4.TrakBox) *mp4.TrakBox {
	for _, trak := range traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func trackInfo(trak *mp4.TrakBox) Info {
	info := Info{Codec: CodecUnknown}

	if trak.Tkhd != nil {
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}

	if mdhd := trak.Mdia.Mdhd; mdhd != nil {
		info.Timescale = mdhd.Timescale
		if mdhd.Timescale > 0 {
			info.Duration = float64(mdhd.Duration) / float64(mdhd.Timescale)
		}
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return info
	}
	stbl := trak.Mdia.Minf.Stbl

	if stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			codec := codecFromSampleEntry(child.Type())
			if codec == CodecUnknown {
				continue
			}
			info.Codec = codec
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && (info.Width == 0 || info.Height == 0) {
				info.Width = int(vse.Width)
				info.Height = int(vse.Height)
			}
			break
		}
	}

	if stbl.Stsz != nil {
		info.FrameCount = int(stbl.Stsz.SampleNumber)
	}

	// A single stts entry means a constant frame rate that can be read exactly.
	if stbl.Stts != nil && len(stbl.Stts.SampleTimeDelta) == 1 && stbl.Stts.SampleTimeDelta[0] > 0 && info.Timescale > 0 {
		info.FrameRate = float64(info.Timescale) / float64(stbl.Stts.SampleTimeDelta[0])
	} else {
		info.FrameRate = frameRate(info.FrameCount, info.Duration)
	}
	return info
}

func trexFor(moov *mp4.MoovBox, trackID uint32) *mp4.TrexBox {
	if moov.Mvex == nil {
		return nil
	}
	for _, trex := range moov.Mvex.Trexs {
		if trex.TrackID == trackID {
			return trex
		}
	}
	return nil
}

// countFragments fills frame count, duration and frame rate from the movie fragments.
func countFragments(mp4File *mp4.File, trackID uint32, trex *mp4.TrexBox, info *Info) {
	var samples uint64
	var ticks uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}
				var defaultDuration uint32
				if trex != nil {
					defaultDuration = trex.DefaultSampleDuration
				}
				if traf.Tfhd.DefaultSampleDuration != 0 {
					defaultDuration = traf.Tfhd.DefaultSampleDuration
				}
				for _, trun := range traf.Truns {
					samples += uint64(trun.SampleCount())
					ticks += trun.Duration(defaultDuration)
				}
			}
		}
	}

	if samples == 0 {
		return
	}
	info.FrameCount = int(samples)
	if info.Timescale > 0 && ticks > 0 {
		info.Duration = float64(ticks) / float64(info.Timescale)
	}
	info.FrameRate = frameRate(info.FrameCount, info.Duration)
}

func frameRate(frames int, duration float64) float64 {
	if frames <= 0 || duration <= 0 {
		return 0
	}
	return float64(frames) / duration
}

func codecFromSampleEntry(boxType string) Codec {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecH265
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	default:
		return CodecUnknown
	}
}
