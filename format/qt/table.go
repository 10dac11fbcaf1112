package qt

import (
	"github.com/ugparu/mediacarve/grammar"
)

const (
	KindUnknown grammar.Kind = iota + 1
	KindTerminatingZero
	KindFileType
	KindMovie
	KindMovieHeader
	KindTrack
	KindTrackHeader
	KindTrackReference
	KindEdit
	KindEditList
	KindMedia
	KindMediaHeader
	KindHandler
	KindMediaInfo
	KindVideoMediaHeader
	KindSoundMediaHeader
	KindBaseMediaHeader
	KindBaseMediaInfo
	KindHintMediaHeader
	KindNullMediaHeader
	KindDataInfo
	KindDataRef
	KindDataEntry
	KindSampleTable
	KindSampleDescription
	KindTimeToSample
	KindCompositionOffset
	KindSyncSample
	KindPartialSyncSample
	KindSampleDependency
	KindSampleToChunk
	KindSampleSize
	KindCompactSampleSize
	KindChunkOffset
	KindChunkOffset64
	KindUserData
	KindMeta
	KindItemList
	KindMetaKeys
	KindObjectDescriptor
	KindMediaData
	KindFree
	KindPreview
	KindUUID
	KindVideoSampleEntry
	KindAudioSampleEntry
	KindAVCConfig
	KindESDescriptor
	KindH263Config
	KindAMRConfig
	KindSoundDescriptionExt
	KindOriginalFormat
	KindEndianness
	KindBitRate
	KindPixelAspect
	KindColor
	KindCleanAperture
	KindFieldHandling
)

const (
	fullAtom      = grammar.HasLengthAndType | grammar.HasVersionAndFlags
	container     = grammar.HasLengthAndType | grammar.Container
	fullContainer = fullAtom | grammar.Container
	dup           = grammar.AllowsDuplicates
	topLevel      = grammar.TopLevel
	atom          = grammar.HasLengthAndType
)

func markers(tags ...Tag) []grammar.Range {
	r := make([]grammar.Range, 0, len(tags))
	for _, t := range tags {
		r = append(r, grammar.One(grammar.Marker(t)))
	}
	return r
}

func parents(kinds ...grammar.Kind) []grammar.Kind {
	return kinds
}

var (
	videoEntryTags = []Tag{AVC1, AVC3, MP4V, S263, H263, JPEG, MJPA, MJPB}
	audioEntryTags = []Tag{MP4A, SAMR, SAWB, TWOS, SOWT, IMA4, ULAW, ALAW, LPCM}
	sampleEntries  = parents(KindVideoSampleEntry, KindAudioSampleEntry)
)

// Table is the QuickTime / ISO base media atom grammar.
var Table = grammar.MustTable("QT",
	grammar.Entry{Kind: grammar.Root, Name: "Root", Flags: grammar.Container},
	grammar.Entry{Kind: KindUnknown, Name: "Unknown", Flags: atom | dup},
	grammar.Entry{Kind: KindTerminatingZero, Name: "TerminatingZero", Flags: dup},

	grammar.Entry{Kind: KindFileType, Name: "FileType", Markers: markers(FTYP), Flags: atom | topLevel,
		Parents: parents(grammar.Root)},
	grammar.Entry{Kind: KindMovie, Name: "Movie", Markers: markers(MOOV), Flags: container | topLevel,
		Parents: parents(grammar.Root)},
	grammar.Entry{Kind: KindMovieHeader, Name: "MovieHeader", Markers: markers(MVHD), Flags: fullAtom,
		Parents: parents(KindMovie)},
	grammar.Entry{Kind: KindObjectDescriptor, Name: "ObjectDescriptor", Markers: markers(IODS), Flags: fullAtom,
		Parents: parents(KindMovie)},
	grammar.Entry{Kind: KindTrack, Name: "Track", Markers: markers(TRAK), Flags: container | dup,
		Parents: parents(KindMovie)},
	grammar.Entry{Kind: KindTrackHeader, Name: "TrackHeader", Markers: markers(TKHD), Flags: fullAtom,
		Parents: parents(KindTrack)},
	grammar.Entry{Kind: KindTrackReference, Name: "TrackReference", Markers: markers(TREF), Flags: container,
		Parents: parents(KindTrack)},
	grammar.Entry{Kind: KindEdit, Name: "Edit", Markers: markers(EDTS), Flags: container,
		Parents: parents(KindTrack)},
	grammar.Entry{Kind: KindEditList, Name: "EditList", Markers: markers(ELST), Flags: fullAtom,
		Parents: parents(KindEdit)},
	grammar.Entry{Kind: KindMedia, Name: "Media", Markers: markers(MDIA), Flags: container,
		Parents: parents(KindTrack)},
	grammar.Entry{Kind: KindMediaHeader, Name: "MediaHeader", Markers: markers(MDHD), Flags: fullAtom,
		Parents: parents(KindMedia)},
	grammar.Entry{Kind: KindHandler, Name: "Handler", Markers: markers(HDLR), Flags: fullAtom,
		Parents: parents(KindMedia, KindMediaInfo, KindMeta)},
	grammar.Entry{Kind: KindMediaInfo, Name: "MediaInfo", Markers: markers(MINF), Flags: container,
		Parents: parents(KindMedia)},
	grammar.Entry{Kind: KindVideoMediaHeader, Name: "VideoMediaHeader", Markers: markers(VMHD), Flags: fullAtom,
		Parents: parents(KindMediaInfo)},
	grammar.Entry{Kind: KindSoundMediaHeader, Name: "SoundMediaHeader", Markers: markers(SMHD), Flags: fullAtom,
		Parents: parents(KindMediaInfo)},
	grammar.Entry{Kind: KindBaseMediaHeader, Name: "BaseMediaHeader", Markers: markers(GMHD), Flags: container,
		Parents: parents(KindMediaInfo)},
	grammar.Entry{Kind: KindBaseMediaInfo, Name: "BaseMediaInfo", Markers: markers(GMIN), Flags: fullAtom,
		Parents: parents(KindBaseMediaHeader)},
	grammar.Entry{Kind: KindHintMediaHeader, Name: "HintMediaHeader", Markers: markers(HMHD), Flags: fullAtom,
		Parents: parents(KindMediaInfo)},
	grammar.Entry{Kind: KindNullMediaHeader, Name: "NullMediaHeader", Markers: markers(NMHD), Flags: fullAtom,
		Parents: parents(KindMediaInfo)},
	grammar.Entry{Kind: KindDataInfo, Name: "DataInfo", Markers: markers(DINF), Flags: container,
		Parents: parents(KindMediaInfo, KindMeta)},
	grammar.Entry{Kind: KindDataRef, Name: "DataRef", Markers: markers(DREF), Flags: fullContainer,
		Parents: parents(KindDataInfo)},
	grammar.Entry{Kind: KindDataEntry, Name: "DataEntry", Markers: markers(URL, URN, ALIS), Flags: fullAtom | dup,
		Parents: parents(KindDataRef)},
	grammar.Entry{Kind: KindSampleTable, Name: "SampleTable", Markers: markers(STBL), Flags: container,
		Parents: parents(KindMediaInfo)},
	grammar.Entry{Kind: KindSampleDescription, Name: "SampleDescription", Markers: markers(STSD), Flags: fullContainer,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindTimeToSample, Name: "TimeToSample", Markers: markers(STTS), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindCompositionOffset, Name: "CompositionOffset", Markers: markers(CTTS), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindSyncSample, Name: "SyncSample", Markers: markers(STSS), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindPartialSyncSample, Name: "PartialSyncSample", Markers: markers(STPS), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindSampleDependency, Name: "SampleDependency", Markers: markers(SDTP), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindSampleToChunk, Name: "SampleToChunk", Markers: markers(STSC), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindSampleSize, Name: "SampleSize", Markers: markers(STSZ), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindCompactSampleSize, Name: "CompactSampleSize", Markers: markers(STZ2), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindChunkOffset, Name: "ChunkOffset", Markers: markers(STCO), Flags: fullAtom,
		Parents: parents(KindSampleTable)},
	grammar.Entry{Kind: KindChunkOffset64, Name: "ChunkOffset64", Markers: markers(CO64), Flags: fullAtom,
		Parents: parents(KindSampleTable)},

	grammar.Entry{Kind: KindUserData, Name: "UserData", Markers: markers(UDTA), Flags: container,
		Parents: parents(KindMovie, KindTrack)},
	grammar.Entry{Kind: KindMeta, Name: "Meta", Markers: markers(META), Flags: container,
		Parents: parents(grammar.Root, KindMovie, KindTrack, KindUserData)},
	grammar.Entry{Kind: KindItemList, Name: "ItemList", Markers: markers(ILST), Flags: container,
		Parents: parents(KindMeta)},
	grammar.Entry{Kind: KindMetaKeys, Name: "MetaKeys", Markers: markers(KEYS), Flags: fullAtom,
		Parents: parents(KindMeta)},

	grammar.Entry{Kind: KindMediaData, Name: "MediaData", Markers: markers(MDAT), Flags: atom | topLevel,
		Parents: parents(grammar.Root)},
	grammar.Entry{Kind: KindFree, Name: "Free", Markers: markers(FREE, SKIP, WIDE), Flags: atom | dup},
	grammar.Entry{Kind: KindPreview, Name: "Preview", Markers: markers(PNOT), Flags: atom,
		Parents: parents(grammar.Root)},
	grammar.Entry{Kind: KindUUID, Name: "UUID", Markers: markers(UUID), Flags: atom | dup},

	grammar.Entry{Kind: KindVideoSampleEntry, Name: "VideoSampleEntry", Markers: markers(videoEntryTags...),
		Flags: container | dup, Parents: parents(KindSampleDescription)},
	grammar.Entry{Kind: KindAudioSampleEntry, Name: "AudioSampleEntry", Markers: markers(audioEntryTags...),
		Flags: container | dup, Parents: parents(KindSampleDescription)},
	grammar.Entry{Kind: KindAVCConfig, Name: "AVCConfig", Markers: markers(AVCC), Flags: atom,
		Parents: parents(KindVideoSampleEntry)},
	grammar.Entry{Kind: KindESDescriptor, Name: "ESDescriptor", Markers: markers(ESDS), Flags: fullAtom,
		Parents: parents(KindVideoSampleEntry, KindAudioSampleEntry, KindSoundDescriptionExt)},
	grammar.Entry{Kind: KindH263Config, Name: "H263Config", Markers: markers(D263), Flags: atom,
		Parents: parents(KindVideoSampleEntry)},
	grammar.Entry{Kind: KindAMRConfig, Name: "AMRConfig", Markers: markers(DAMR), Flags: atom,
		Parents: parents(KindAudioSampleEntry)},
	grammar.Entry{Kind: KindSoundDescriptionExt, Name: "SoundDescriptionExt", Markers: markers(WAVE), Flags: container,
		Parents: parents(KindAudioSampleEntry)},
	grammar.Entry{Kind: KindOriginalFormat, Name: "OriginalFormat", Markers: markers(FRMA), Flags: atom,
		Parents: parents(KindSoundDescriptionExt)},
	grammar.Entry{Kind: KindEndianness, Name: "Endianness", Markers: markers(ENDA), Flags: atom,
		Parents: parents(KindSoundDescriptionExt)},
	grammar.Entry{Kind: KindBitRate, Name: "BitRate", Markers: markers(BTRT), Flags: atom,
		Parents: sampleEntries},
	grammar.Entry{Kind: KindPixelAspect, Name: "PixelAspect", Markers: markers(PASP), Flags: atom,
		Parents: parents(KindVideoSampleEntry)},
	grammar.Entry{Kind: KindColor, Name: "Color", Markers: markers(COLR), Flags: atom,
		Parents: parents(KindVideoSampleEntry)},
	grammar.Entry{Kind: KindCleanAperture, Name: "CleanAperture", Markers: markers(CLAP), Flags: atom,
		Parents: parents(KindVideoSampleEntry)},
	grammar.Entry{Kind: KindFieldHandling, Name: "FieldHandling", Markers: markers(FIEL), Flags: atom,
		Parents: parents(KindVideoSampleEntry)},
)
