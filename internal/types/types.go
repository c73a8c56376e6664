package types

import "image"

// Frame is a single decoded raster image, in source order
type Frame struct {
	Index int
	Image image.Image
}

// ProbeOutput matches the JSON structure printed by ffprobe -show_streams -of json
type ProbeOutput struct {
	Streams []ProbeStream `json:"streams"`
}

// ProbeStream is one entry of ProbeOutput.Streams
type ProbeStream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"` // "video", "audio", "subtitle", ...
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	NbFrames  string `json:"nb_frames"`
}
