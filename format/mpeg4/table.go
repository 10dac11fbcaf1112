package mpeg4

import (
	"github.com/ugparu/mediacarve/grammar"
)

const (
	KindVisualObjectSequence grammar.Kind = iota + 1
	KindVisualObject
	KindVideoObject
	KindVideoObjectLayer
	KindGroupOfVop
	KindVop
	KindUserData
	KindSequenceEnd
)

// Markers of the 22-bit short header codes, kept clear of the 00 00 01 xx space.
const (
	ShortPictureMarker grammar.Marker = 0x20
	ShortEndMarker     grammar.Marker = 0x3f
)

// StartMarker returns the table marker of the start code 00 00 01 v.
func StartMarker(v byte) grammar.Marker {
	return startCodePrefix<<8 | grammar.Marker(v)
}

func codes(vs ...byte) []grammar.Range {
	r := make([]grammar.Range, 0, len(vs))
	for _, v := range vs {
		r = append(r, grammar.One(StartMarker(v)))
	}
	return r
}

// Table is the MPEG-4 part 2 visual bitstream grammar. Nodes follow each
// other in the stream; nesting is by order, not by byte range.
var Table = grammar.MustTable("MPEG4",
	grammar.Entry{Kind: grammar.Root, Name: "Root", Flags: grammar.Container},
	grammar.Entry{Kind: KindVisualObjectSequence, Name: "VisualObjectSequence", Markers: codes(VisualObjectSequence),
		Flags: grammar.Container | grammar.TopLevel | grammar.AllowsDuplicates, Parents: []grammar.Kind{grammar.Root}},
	grammar.Entry{Kind: KindVisualObject, Name: "VisualObject", Markers: codes(VisualObject),
		Flags: grammar.Container, Parents: []grammar.Kind{KindVisualObjectSequence}},
	grammar.Entry{Kind: KindVideoObject, Name: "VideoObject",
		Markers: []grammar.Range{{Lo: StartMarker(VideoObjectFirst), Hi: StartMarker(VideoObjectLast)}},
		Flags:   grammar.Container, Parents: []grammar.Kind{KindVisualObject}},
	grammar.Entry{Kind: KindVideoObjectLayer, Name: "VideoObjectLayer",
		Markers: []grammar.Range{{Lo: StartMarker(VideoObjectLayerFirst), Hi: StartMarker(VideoObjectLayerLast)}},
		Flags:   grammar.Container, Parents: []grammar.Kind{KindVideoObject}},
	grammar.Entry{Kind: KindGroupOfVop, Name: "GroupOfVop", Markers: codes(GroupOfVop),
		Flags: grammar.AllowsDuplicates, Parents: []grammar.Kind{KindVideoObjectLayer}},
	grammar.Entry{Kind: KindVop, Name: "Vop",
		Markers: append(codes(Vop), grammar.One(ShortPictureMarker)),
		Flags:   grammar.AllowsDuplicates, Parents: []grammar.Kind{KindVideoObjectLayer, KindVideoObject}},
	grammar.Entry{Kind: KindUserData, Name: "UserData", Markers: codes(UserData),
		Flags: grammar.AllowsDuplicates},
	grammar.Entry{Kind: KindSequenceEnd, Name: "SequenceEnd",
		Markers: append(codes(VisualObjectSeqEnd), grammar.One(ShortEndMarker)),
		Flags:   grammar.AllowsDuplicates, Parents: []grammar.Kind{KindVisualObjectSequence}},
)
