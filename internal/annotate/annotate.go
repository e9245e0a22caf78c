// Package annotate post-processes files produced by a tool run: it records
// their provenance and optionally marks generated Java sources so compilers
// do not warn about them.
package annotate

import (
	"crypto"
	_ "crypto/md5" // registers crypto.MD5
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gramc/internal/failure"
	"gramc/internal/provenance"
	"gramc/internal/source"
)

const (
	suppressAll   = `@SuppressWarnings("all")`
	trailerOpen   = "/* JavaCC - OriginalChecksum="
	trailerClose  = " (do not edit this line) */"
	checksumHexes = 32
)

var (
	// Group 1 is the declaration proper, group 2 an annotation already there.
	typeDeclRe = regexp.MustCompile(`(?m)^[ \t]*((@SuppressWarnings\("all"\)\s*)?((public|final)\s+)*(class|interface|enum)\s)`)
	trailerRe  = regexp.MustCompile(`/\* JavaCC - OriginalChecksum=([0-9a-f]{32}) \(do not edit this line\) \*/(\r\n|\n|\r)?$`)
)

// digest is the algorithm the parser generator uses for its trailer.
var digest = crypto.MD5

// MarkProvenance records generated as derived from origin (a project-relative
// grammar path). The store is only written when the values differ.
func MarkProvenance(store *provenance.Store, generated, origin string) (bool, error) {
	rec, ok, err := store.Get(generated)
	if err != nil {
		return false, err
	}
	if ok && rec.Derived && rec.Origin == origin {
		return false, nil
	}
	if err := store.Put(provenance.Record{Path: generated, Derived: true, Origin: origin}); err != nil {
		return false, err
	}
	return true, nil
}

// IsCompilationUnit reports whether path is a Java source file.
func IsCompilationUnit(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// MaybeRewrite inserts the suppression annotation into generated when enabled
// and the file is a Java compilation unit. A checksum trailer at the end of the
// file is recomputed over the rewritten body. It reports whether the file changed.
func MaybeRewrite(generated string, enabled bool) (bool, error) {
	if !enabled || !IsCompilationUnit(generated) {
		return false, nil
	}
	info, err := os.Stat(generated)
	if err != nil {
		return false, &failure.FilesystemError{Op: "stat", Path: generated, Err: err}
	}
	data, err := os.ReadFile(generated)
	if err != nil {
		return false, &failure.FilesystemError{Op: "read", Path: generated, Err: err}
	}
	body, bom := source.RemoveBOM(data)
	out, changed, err := Rewrite(string(body))
	if err != nil || !changed {
		return false, err
	}
	if bom {
		out = string(data[:len(data)-len(body)]) + out
	}
	if err := os.WriteFile(generated, []byte(out), info.Mode().Perm()); err != nil {
		return false, &failure.FilesystemError{Op: "write", Path: generated, Err: err}
	}
	return true, nil
}

// Rewrite is MaybeRewrite on file content.
func Rewrite(content string) (string, bool, error) {
	loc := findTypeDecl(content)
	if loc == nil || loc[4] >= 0 {
		return content, false, nil
	}
	at := loc[2]
	body, ending, hasTrailer := splitTrailer(content)
	if hasTrailer && at >= len(body) {
		return content, false, nil
	}
	if hasTrailer && !digest.Available() {
		return content, false, failure.ErrChecksumUnavailable
	}
	body = body[:at] + suppressAll + " " + body[at:]
	if !hasTrailer {
		return body, true, nil
	}
	sum, err := Checksum(body)
	if err != nil {
		return content, false, err
	}
	return body + Trailer(sum) + ending, true, nil
}

// findTypeDecl returns the submatch indexes of the first type declaration
// that starts outside a comment.
func findTypeDecl(content string) []int {
	comments := commentRanges(content)
	for _, loc := range typeDeclRe.FindAllStringSubmatchIndex(content, -1) {
		inside := false
		for _, c := range comments {
			if loc[2] >= c[0] && loc[2] < c[1] {
				inside = true
				break
			}
		}
		if !inside {
			return loc
		}
	}
	return nil
}

// commentRanges lists the [start, end) offsets of Java comments, skipping
// string and character literals.
func commentRanges(s string) [][2]int {
	var out [][2]int
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"' || s[i] == '\'':
			q := s[i]
			for i++; i < len(s) && s[i] != q && s[i] != '\n'; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		case strings.HasPrefix(s[i:], "//"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			out = append(out, [2]int{i, i + end})
			i += end
		case strings.HasPrefix(s[i:], "/*"):
			stop := len(s)
			if end := strings.Index(s[i+2:], "*/"); end >= 0 {
				stop = i + 2 + end + 2
			}
			out = append(out, [2]int{i, stop})
			i = stop - 1
		}
	}
	return out
}

// splitTrailer separates a trailing checksum line from the body before it.
func splitTrailer(content string) (body, ending string, ok bool) {
	m := trailerRe.FindStringSubmatchIndex(content)
	if m == nil {
		return content, "", false
	}
	if m[4] >= 0 {
		ending = content[m[4]:m[5]]
	}
	return content[:m[0]], ending, true
}

// Checksum is the lowercase hex digest the tool writes into its trailer.
func Checksum(body string) (string, error) {
	if !digest.Available() {
		return "", failure.ErrChecksumUnavailable
	}
	h := digest.New()
	if _, err := h.Write([]byte(body)); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Trailer renders the checksum comment without a line terminator.
func Trailer(sum string) string {
	return trailerOpen + sum + trailerClose
}

// storedChecksum returns the digest recorded in content's trailer.
func storedChecksum(content string) (string, bool) {
	m := trailerRe.FindStringSubmatch(content)
	if m == nil || len(m[1]) != checksumHexes {
		return "", false
	}
	return m[1], true
}
