package slack

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// ViewMetadata is the correlation context threaded through one modal
// round-trip. It is serialized into the view's private_metadata at modal-open
// time and decoded from the submission payload; the platform does not
// otherwise preserve the originating context across that boundary.
type ViewMetadata struct {
	SourcePermalink string `json:"slackLink,omitempty"`
	ChannelID       string `json:"channelId,omitempty"`
	ResponseURL     string `json:"responseUrl,omitempty"`
}

// Encode serializes the metadata for private_metadata
func (m ViewMetadata) Encode() string {
	data, err := json.Marshal(m)
	if err != nil {
		// ViewMetadata is all strings; Marshal cannot fail here
		return "{}"
	}
	return string(data)
}

// DecodeViewMetadata parses private_metadata back into ViewMetadata.
// An empty string decodes to the zero value.
func DecodeViewMetadata(raw string) (ViewMetadata, error) {
	var m ViewMetadata
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ViewMetadata{}, goerr.Wrap(err, "failed to decode view metadata")
	}
	return m, nil
}
