package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
)

// clearMark entered at a prompt empties the field.
const clearMark = "-"

type editor struct {
	r *bufio.Reader
	w io.Writer
}

// readDraft walks the user through every field of base. An empty answer
// keeps the shown value and "-" clears it. Invalid answers are reported
// and asked again. Only a read error ends the walk early.
func readDraft(r *bufio.Reader, w io.Writer, base models.Draft) (models.Draft, error) {
	e := editor{r: r, w: w}
	d := base
	d.Content = models.DiaryRecord{Content: base.Content}.Clone().Content
	d.Analyze = false

	var err error
	if d.LocalID == "" {
		if err = e.parsed("Date (YYYY-MM-DD)", d.EntryDate.String(), false, func(s string) error {
			date, perr := models.ParseDate(s)
			d.EntryDate = date
			return perr
		}); err != nil {
			return d, err
		}
	}

	c := &d.Content
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"What happened", &c.Event},
		{"How did you feel", &c.Emotion},
		{"What did it mean to you", &c.Meaning},
		{"What did you tell yourself", &c.SelfTalk},
		{"How did you sleep", &c.SleepNote},
		{"Grateful for", &c.Gratitude},
	} {
		if *f.dst, err = e.text(f.label, *f.dst); err != nil {
			return d, err
		}
	}

	if err = e.parsed("Mood 1-5", moodText(c.Mood), true, func(s string) error {
		if s == "" {
			c.Mood = 0
			return nil
		}
		v, perr := ParseMood(s)
		c.Mood = v
		return perr
	}); err != nil {
		return d, err
	}

	if c.Weather, err = e.text("Weather", c.Weather); err != nil {
		return d, err
	}

	if err = e.parsed("Temperature", floatText(c.Temperature), true, func(s string) error {
		if s == "" {
			c.Temperature = nil
			return nil
		}
		v, perr := ParseTemperature(s)
		if perr == nil {
			c.Temperature = &v
		}
		return perr
	}); err != nil {
		return d, err
	}

	if err = e.parsed("Took medication (y/n)", boolText(c.MedicationTaken), true, func(s string) error {
		if s == "" {
			c.MedicationTaken = nil
			return nil
		}
		v, perr := ParseYesNo(s)
		if perr == nil {
			c.MedicationTaken = &v
		}
		return perr
	}); err != nil {
		return d, err
	}

	if c.MedicationDetail, err = e.text("Medication details", c.MedicationDetail); err != nil {
		return d, err
	}

	symptoms, err := e.text("Symptoms (comma separated)", strings.Join(c.Symptoms, ", "))
	if err != nil {
		return d, err
	}
	c.Symptoms = SplitList(symptoms)

	if err = e.parsed("Request analysis (y/N)", "", true, func(s string) error {
		if s == "" {
			return nil
		}
		v, perr := ParseYesNo(s)
		d.Analyze = v
		return perr
	}); err != nil {
		return d, err
	}

	return d, nil
}

func (e editor) ask(label, cur string) (string, error) {
	prompt := label
	if cur != "" {
		prompt += fmt.Sprintf(" [%s]", abbreviate(cur, 40))
	}
	return GetSimpleText(e.r, prompt, e.w)
}

func (e editor) text(label, cur string) (string, error) {
	v, err := e.ask(label, cur)
	if err != nil {
		return "", err
	}
	switch v {
	case "":
		return cur, nil
	case clearMark:
		return "", nil
	}
	return v, nil
}

// parsed asks until apply accepts the answer. apply receives the current
// value for an empty answer, and "" for clearMark when clearable is set.
func (e editor) parsed(label, cur string, clearable bool, apply func(string) error) error {
	for {
		v, err := e.ask(label, cur)
		if err != nil {
			return err
		}
		switch {
		case v == "":
			v = cur
		case v == clearMark && clearable:
			v = ""
		}
		if err := apply(v); err != nil {
			fmt.Fprintf(e.w, "error: %v\n", err)
			continue
		}
		return nil
	}
}

func moodText(m int) string {
	if m == 0 {
		return ""
	}
	return strconv.Itoa(m)
}

func floatText(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func boolText(b *bool) string {
	switch {
	case b == nil:
		return ""
	case *b:
		return "y"
	default:
		return "n"
	}
}

func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
