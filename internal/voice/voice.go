package voice

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ID is one of the six fixed voice identities a podcast can be narrated with.
type ID string

const (
	Alloy   ID = "alloy"
	Shimmer ID = "shimmer"
	Nova    ID = "nova"
	Echo    ID = "echo"
	Fable   ID = "fable"
	Onyx    ID = "onyx"
)

// All lists every valid voice, in display order.
var All = []ID{Alloy, Shimmer, Nova, Echo, Fable, Onyx}

// previewObjects maps each voice to its static preview resource. The set is
// closed: a voice without a preview here is a bug, not a runtime condition.
var previewObjects = map[ID]string{
	Alloy:   "previews/alloy.mp3",
	Shimmer: "previews/shimmer.mp3",
	Nova:    "previews/nova.mp3",
	Echo:    "previews/echo.mp3",
	Fable:   "previews/fable.mp3",
	Onyx:    "previews/onyx.mp3",
}

var speechVoices = map[ID]openai.SpeechVoice{
	Alloy:   openai.VoiceAlloy,
	Shimmer: openai.VoiceShimmer,
	Nova:    openai.VoiceNova,
	Echo:    openai.VoiceEcho,
	Fable:   openai.VoiceFable,
	Onyx:    openai.VoiceOnyx,
}

// Parse validates a raw string against the closed voice set.
func Parse(s string) (ID, error) {
	id := ID(s)
	if _, ok := previewObjects[id]; !ok {
		return "", fmt.Errorf("unknown voice %q", s)
	}
	return id, nil
}

// PreviewObject returns the storage object holding the short preview clip for v.
func PreviewObject(v ID) string {
	return previewObjects[v]
}

// SpeechVoice returns the OpenAI speech voice constant for v.
func SpeechVoice(v ID) openai.SpeechVoice {
	return speechVoices[v]
}

func (v ID) String() string {
	return string(v)
}
