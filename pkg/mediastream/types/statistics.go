package types

type Statistics struct {
	PacketsRead        uint64
	PacketsSkipped     uint64
	BytesRead          uint64
	VideoFramesDecoded uint64
	AudioBytesDecoded  uint64
	Seeks              uint64
}
