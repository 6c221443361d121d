// ABOUTME: Message template store for pre/post-call and finance outreach
// ABOUTME: Reads an optional JSON file and falls back to built-in defaults per key
package sms

import (
	"encoding/json"
	"os"
	"strings"
)

// Defaults used when no templates file exists or a key is absent from it.
var defaultTemplates = map[string]string{
	"pre_call_sms":  "Hi {first_name}, this is {rep_name} with Wolf Carports. I'm about to give you a quick call regarding your building quote. Talk soon!",
	"post_call_sms": "Hi {first_name}, this is {rep_name} with Wolf Carports. Great speaking with you! Here's my direct line if anything comes up: {rep_phone}.",
	"finance_sms":   "Hi {first_name}, this is {rep_name} with Wolf Carports. You can apply for financing here: https://wolfcarports.com/financing. It only takes a few minutes. Questions? Call me at {rep_phone}.",
	"email_subject": "Your Wolf Carports Quote",
	"email_body":    "Hi {first_name},\n\nThank you for your interest in Wolf Carports. I'm {rep_name}, your dedicated building specialist. Reach me any time at {rep_phone}.\n\nBest,\n{rep_name}",
}

// Templates holds rendered-ready message bodies keyed by purpose.
type Templates struct {
	values map[string]string
}

// LoadTemplates reads a JSON object of template overrides from path. A missing
// or unreadable file is not an error; defaults cover every key.
func LoadTemplates(path string) *Templates {
	t := &Templates{values: map[string]string{}}
	for k, v := range defaultTemplates {
		t.values[k] = v
	}
	if path == "" {
		return t
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return t
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) != "" {
			t.values[k] = v
		}
	}
	return t
}

// Get returns the template body for key, empty string if unknown.
func (t *Templates) Get(key string) string {
	return t.values[key]
}

// Fill substitutes the {first_name}, {rep_name}, and {rep_phone} placeholders.
func Fill(template, firstName, repName, repPhone string) string {
	r := strings.NewReplacer(
		"{first_name}", firstName,
		"{rep_name}", repName,
		"{rep_phone}", repPhone,
	)
	return r.Replace(template)
}
