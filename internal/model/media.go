package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MediaURL is an image or video location. Upload providers return either
// a bare string or an object (`{"url": ...}`, `{"secure_url": ...}`,
// `{"src": ...}`); both decode to the string form.
type MediaURL string

func (m *MediaURL) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = ""
		return nil
	}

	if trimmed[0] == '{' {
		var obj struct {
			URL       string `json:"url"`
			SecureURL string `json:"secure_url"`
			Src       string `json:"src"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("media url: %w", err)
		}
		switch {
		case obj.SecureURL != "":
			*m = MediaURL(obj.SecureURL)
		case obj.URL != "":
			*m = MediaURL(obj.URL)
		default:
			*m = MediaURL(obj.Src)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("media url: %w", err)
	}
	*m = MediaURL(s)
	return nil
}

func (m MediaURL) String() string { return string(m) }
