package extract

// Feature maps a canonical feature tag to the phrases that request it.
type Feature struct {
	Tag     string
	Aliases []string
}

// vocabulary is matched in declaration order; requirements come out in the
// same order.
var vocabulary = []Feature{
	{Tag: "projector", Aliases: []string{"projector", "beamer"}},
	{Tag: "whiteboard", Aliases: []string{"whiteboard", "white board", "dry erase"}},
	{Tag: "tv", Aliases: []string{"tv", "television"}},
	{Tag: "screen", Aliases: []string{"screen"}},
	{Tag: "wifi", Aliases: []string{"wifi", "wi-fi", "wireless"}},
	{Tag: "conference_phone", Aliases: []string{"conference phone", "speakerphone", "conference call"}},
	{Tag: "sound_system", Aliases: []string{"sound system", "speaker system", "pa system"}},
	{Tag: "video", Aliases: []string{"video"}},
	{Tag: "camera", Aliases: []string{"camera", "webcam"}},
	{Tag: "monitor", Aliases: []string{"monitor"}},
	{Tag: "hdmi", Aliases: []string{"hdmi"}},
	{Tag: "mac_adapter", Aliases: []string{"mac adapter", "usb-c adapter", "dongle"}},
	{Tag: "pc", Aliases: []string{"pc", "desktop computer"}},
	{Tag: "wheelchair_access", Aliases: []string{"wheelchair", "wheel chair", "accessible", "step-free", "step free"}},
	{Tag: "hearing_loop", Aliases: []string{"hearing loop", "induction loop", "hearing aid"}},
	{Tag: "braille_signage", Aliases: []string{"braille"}},
}

// Vocabulary returns a copy of the feature table.
func Vocabulary() []Feature {
	out := make([]Feature, len(vocabulary))
	for i, f := range vocabulary {
		out[i] = Feature{Tag: f.Tag, Aliases: append([]string(nil), f.Aliases...)}
	}
	return out
}
