package planstore

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// maxDescriptionChars bounds the sanitized description portion of a
// generated filename, before the trailing hash suffix.
const maxDescriptionChars = 40

var bracketPrefixRe = regexp.MustCompile(`^\[(.*?)\]\s*`)

// commonLeadingVerbs are stripped from the head of a task description
// before sanitizing, so "Implement: user auth" and "user auth" produce the
// same filename stem.
var commonLeadingVerbs = map[string]bool{
	"implement": true, "create": true, "add": true, "build": true,
	"write": true, "fix": true, "update": true, "refactor": true,
	"remove": true, "delete": true, "setup": true, "configure": true,
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
var dashTrimRe = regexp.MustCompile(`^-+|-+$`)

func sanitize(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, "-")
	s = dashTrimRe.ReplaceAllString(s, "")
	return s
}

func stripLeadingVerb(desc string) string {
	desc = strings.TrimSpace(desc)
	words := strings.Fields(desc)
	if len(words) == 0 {
		return desc
	}
	first := strings.ToLower(strings.TrimSuffix(words[0], ":"))
	if commonLeadingVerbs[first] {
		return strings.TrimSpace(strings.Join(words[1:], " "))
	}
	return desc
}

// GeneratePlanFilename deterministically derives a human-readable filename
// stem from a task description and its taskId: it is a pure function of its
// two inputs. Format: sanitize(bracket-prefix)-sanitize(description minus a
// leading common verb)-hex(MD5(taskId))[0:4], with the description portion
// truncated to maxDescriptionChars; if the description portion sanitizes to
// empty, the 4-char hash alone is used.
func GeneratePlanFilename(taskDescription, taskID string) string {
	sum := md5.Sum([]byte(taskID))
	hash := hex.EncodeToString(sum[:])[:4]

	prefix := ""
	rest := taskDescription
	if m := bracketPrefixRe.FindStringSubmatch(taskDescription); m != nil {
		prefix = m[1]
		rest = taskDescription[len(m[0]):]
	}

	rest = stripLeadingVerb(rest)

	stem := sanitize(prefix)
	restSan := sanitize(rest)
	if stem != "" && restSan != "" {
		stem += "-" + restSan
	} else if restSan != "" {
		stem = restSan
	}

	if len(stem) > maxDescriptionChars {
		stem = strings.TrimRight(stem[:maxDescriptionChars], "-")
	}

	if stem == "" {
		return hash
	}
	return stem + "-" + hash
}
