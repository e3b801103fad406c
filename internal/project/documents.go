package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// looseString accepts a JSON string, number, or bool and keeps its text.
// Upstream stages are not strict about the types of number/age fields.
type looseString struct {
	value string
	set   bool
}

func (l *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		l.value, l.set = s, true
		return nil
	}
	l.value, l.set = string(data), true
	return nil
}

func (l looseString) or(fallback string) string {
	if !l.set {
		return fallback
	}
	return l.value
}

// Segment is one storyboard entry from story.json.
type Segment struct {
	Number looseString `json:"number"`
	Start  *float64    `json:"start"`
	End    *float64    `json:"end"`
	Label  looseString `json:"label"`
	Text   looseString `json:"text"`
	Story  looseString `json:"story"`
}

// Character is one entry of label.json's character_depiction.
type Character struct {
	Key        string      `json:"-"`
	Name       looseString `json:"name"`
	Gender     looseString `json:"gender"`
	Age        looseString `json:"age"`
	Appearance looseString `json:"appearance"`
	Role       looseString `json:"role"`
}

// CharacterSheet is label.json. Characters keep document order.
type CharacterSheet struct {
	StyleRequirement string
	Characters       []Character
}

func (c *CharacterSheet) UnmarshalJSON(data []byte) error {
	var raw struct {
		StyleRequirement looseString     `json:"style_requirement"`
		Depiction        json.RawMessage `json:"character_depiction"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.StyleRequirement = raw.StyleRequirement.or("")
	c.Characters = nil
	if len(raw.Depiction) == 0 || bytes.Equal(bytes.TrimSpace(raw.Depiction), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Depiction))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("character_depiction: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var ch Character
		if err := dec.Decode(&ch); err != nil {
			return fmt.Errorf("character_depiction.%s: %w", key, err)
		}
		ch.Key = key
		c.Characters = append(c.Characters, ch)
	}
	_, err = dec.Token()
	return err
}

// FormatStoryboard renders segments as markdown rows separated by rules.
func FormatStoryboard(segments []Segment) string {
	if len(segments) == 0 {
		return EmptyStoryboard
	}
	rows := make([]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, fmt.Sprintf(
			"**#%s** [%ss - %ss] (%s)\nLyrics: %s\nScene: %s\n",
			seg.Number.or("?"),
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			seg.Label.or("unknown"),
			seg.Text.or("N/A"),
			seg.Story.or("N/A"),
		))
	}
	return strings.Join(rows, "\n---\n")
}

// FormatCharacters renders the style note and each character.
func FormatCharacters(sheet CharacterSheet) string {
	var blocks []string
	if sheet.StyleRequirement != "" {
		blocks = append(blocks, "**Style:** "+sheet.StyleRequirement+"\n")
	}
	for _, ch := range sheet.Characters {
		blocks = append(blocks, fmt.Sprintf(
			"**%s** — %s, %s\nAppearance: %s\nRole: %s\n",
			ch.Name.or(ch.Key),
			ch.Gender.or("?"),
			ch.Age.or("?"),
			ch.Appearance.or("N/A"),
			ch.Role.or("N/A"),
		))
	}
	if len(blocks) == 0 {
		return NoCharactersDefined
	}
	return strings.Join(blocks, "\n---\n")
}

func formatSeconds(v *float64) string {
	if v == nil {
		return "0.0"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
