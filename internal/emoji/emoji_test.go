package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	SetEmojiDisabled(false)
	if got := GetEmoji("success"); got != "✅" {
		t.Errorf("Expected emoji, got %s", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Error("Expected emoji to be disabled")
	}
	if got := GetEmoji("fake"); got != "[FAKE]" {
		t.Errorf("Expected fallback [FAKE], got %s", got)
	}

	if got := GetEmoji("no-such-key"); got != "[?]" {
		t.Errorf("Expected [?] for unknown key, got %s", got)
	}
}

func TestEmojiKeys(t *testing.T) {
	want := []string{
		"error", "warning", "success", "image", "preview", "analysis", "ela",
		"real", "fake", "drop", "folder", "link", "hourglass", "target",
	}
	if len(emojiMap) != len(want) {
		t.Errorf("Expected %d keys, got %d", len(want), len(emojiMap))
	}
	for _, key := range want {
		mapping, ok := emojiMap[key]
		if !ok {
			t.Errorf("Missing key %q", key)
			continue
		}
		if mapping[0] == "" || mapping[1] == "" {
			t.Errorf("Key %q needs both an emoji and a fallback", key)
		}
	}
}
