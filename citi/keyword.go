package citi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// KeywordKind tags a classified line.
type KeywordKind uint8

const (
	KwCITIFile KeywordKind = iota // CITIFILE <version>
	KwName                        // NAME <name>
	KwVar                         // VAR <name> [<format>] <length>
	KwConstant                    // CONSTANT <name> <value>
	KwDeviceHeader                // DEVICE <name>
	KwDeviceEntry                 // DEVICE <name> <entry>
	KwSegListBegin                // SEG_LIST_BEGIN
	KwSegItem                     // SEG <first> <last> <count>
	KwSegListEnd                  // SEG_LIST_END
	KwVarListBegin                // VAR_LIST_BEGIN
	KwVarListItem                 // bare numeric value
	KwVarListEnd                  // VAR_LIST_END
	KwData                        // DATA <name> <format>
	KwDataPair                    // <real>,<imag>
	KwBegin                       // BEGIN
	KwEnd                         // END
	KwComment                     // #<text>
)

// String returns the kind name.
func (k KeywordKind) String() string {
	switch k {
	case KwCITIFile:
		return "CITIFILE"
	case KwName:
		return "NAME"
	case KwVar:
		return "VAR"
	case KwConstant:
		return "CONSTANT"
	case KwDeviceHeader:
		return "DEVICE"
	case KwDeviceEntry:
		return "DEVICE entry"
	case KwSegListBegin:
		return "SEG_LIST_BEGIN"
	case KwSegItem:
		return "SEG"
	case KwSegListEnd:
		return "SEG_LIST_END"
	case KwVarListBegin:
		return "VAR_LIST_BEGIN"
	case KwVarListItem:
		return "var list item"
	case KwVarListEnd:
		return "VAR_LIST_END"
	case KwData:
		return "DATA"
	case KwDataPair:
		return "data pair"
	case KwBegin:
		return "BEGIN"
	case KwEnd:
		return "END"
	case KwComment:
		return "comment"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Keyword is one classified line: a kind plus its decoded arguments.
// Only the fields relevant to the kind are set.
type Keyword struct {
	Kind   KeywordKind
	Name   string  // NAME / VAR / CONSTANT / DEVICE / DATA name
	Format string  // VAR / DATA format label
	Value  string  // CITIFILE version, CONSTANT value, DEVICE entry, comment text
	Length int     // VAR declared length, SEG point count
	Real   float64 // data pair real, SEG first, var list value
	Imag   float64 // data pair imaginary, SEG last
}

// Argument-shape patterns, one per keyword family.
var (
	reCITIFile    = regexp.MustCompile(`^CITIFILE (\S+)$`)
	reName        = regexp.MustCompile(`^NAME (\S+)$`)
	reVar         = regexp.MustCompile(`^VAR (\S+) ?(\S*) (\d+)$`)
	reConstant    = regexp.MustCompile(`^CONSTANT (\S+) (\S+)$`)
	reDeviceEntry = regexp.MustCompile(`^DEVICE (\S+) (.+)$`)
	reDeviceHead  = regexp.MustCompile(`^DEVICE (\S+)$`)
	reData        = regexp.MustCompile(`^DATA (\S+) (\S+)$`)
	reSegItem     = regexp.MustCompile(`^SEG ([+-]?\d+\.?\d*[eE]?[+-]?\d+) ([+-]?\d+\.?\d*[eE]?[+-]?\d+) (\d+)$`)
	reVarItem     = regexp.MustCompile(`^[+-]?\d+\.?\d*[eE]?[+-]?\d+$`)
	reDataPair    = regexp.MustCompile(`^(\S+),\s*(\S+)$`)
)

// ClassifyLine tokenizes one line into a keyword plus decoded
// arguments. The line must already be trimmed of surrounding
// whitespace; blank-line handling belongs to the caller.
//
// Families are tried in a fixed order: exact markers, comments, data
// pairs, SEG items, bare values, DATA, VAR, DEVICE, CITIFILE, NAME,
// CONSTANT. A line matching no family fails with CodeParseBadKeyword;
// a numeric token that is not a float literal fails with
// CodeParseNumber and is never coerced to zero.
func ClassifyLine(line string) (Keyword, error) {
	switch line {
	case "SEG_LIST_BEGIN":
		return Keyword{Kind: KwSegListBegin}, nil
	case "SEG_LIST_END":
		return Keyword{Kind: KwSegListEnd}, nil
	case "VAR_LIST_BEGIN":
		return Keyword{Kind: KwVarListBegin}, nil
	case "VAR_LIST_END":
		return Keyword{Kind: KwVarListEnd}, nil
	case "BEGIN":
		return Keyword{Kind: KwBegin}, nil
	case "END":
		return Keyword{Kind: KwEnd}, nil
	}

	if strings.HasPrefix(line, "#") {
		return Keyword{Kind: KwComment, Value: line[1:]}, nil
	}

	if m := reDataPair.FindStringSubmatch(line); m != nil {
		re, err := parseFloat(m[1], line)
		if err != nil {
			return Keyword{}, err
		}
		im, err := parseFloat(m[2], line)
		if err != nil {
			return Keyword{}, err
		}
		return Keyword{Kind: KwDataPair, Real: re, Imag: im}, nil
	}

	if m := reSegItem.FindStringSubmatch(line); m != nil {
		first, err := parseFloat(m[1], line)
		if err != nil {
			return Keyword{}, err
		}
		last, err := parseFloat(m[2], line)
		if err != nil {
			return Keyword{}, err
		}
		n, err := parseInt(m[3], line)
		if err != nil {
			return Keyword{}, err
		}
		return Keyword{Kind: KwSegItem, Real: first, Imag: last, Length: n}, nil
	}

	if reVarItem.MatchString(line) {
		v, err := parseFloat(line, line)
		if err != nil {
			return Keyword{}, err
		}
		return Keyword{Kind: KwVarListItem, Real: v}, nil
	}

	if m := reData.FindStringSubmatch(line); m != nil {
		return Keyword{Kind: KwData, Name: m[1], Format: m[2]}, nil
	}

	if m := reVar.FindStringSubmatch(line); m != nil {
		n, err := parseInt(m[3], line)
		if err != nil {
			return Keyword{}, err
		}
		return Keyword{Kind: KwVar, Name: m[1], Format: m[2], Length: n}, nil
	}

	if m := reDeviceEntry.FindStringSubmatch(line); m != nil {
		return Keyword{Kind: KwDeviceEntry, Name: m[1], Value: m[2]}, nil
	}

	if m := reDeviceHead.FindStringSubmatch(line); m != nil {
		return Keyword{Kind: KwDeviceHeader, Name: m[1]}, nil
	}

	if m := reCITIFile.FindStringSubmatch(line); m != nil {
		return Keyword{Kind: KwCITIFile, Value: m[1]}, nil
	}

	if m := reName.FindStringSubmatch(line); m != nil {
		return Keyword{Kind: KwName, Name: m[1]}, nil
	}

	if m := reConstant.FindStringSubmatch(line); m != nil {
		return Keyword{Kind: KwConstant, Name: m[1], Value: m[2]}, nil
	}

	return Keyword{}, &ParseError{Kind: CodeParseBadKeyword, Line: line}
}

func parseFloat(tok, line string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{Kind: CodeParseNumber, Line: line}
	}
	return v, nil
}

func parseInt(tok, line string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParseError{Kind: CodeParseNumber, Line: line}
	}
	return n, nil
}

// String renders the keyword back into its canonical line form.
func (k Keyword) String() string {
	switch k.Kind {
	case KwCITIFile:
		return "CITIFILE " + k.Value
	case KwName:
		return "NAME " + k.Name
	case KwVar:
		if k.Format == "" {
			return fmt.Sprintf("VAR %s %d", k.Name, k.Length)
		}
		return fmt.Sprintf("VAR %s %s %d", k.Name, k.Format, k.Length)
	case KwConstant:
		return "CONSTANT " + k.Name + " " + k.Value
	case KwDeviceHeader:
		return "DEVICE " + k.Name
	case KwDeviceEntry:
		return "DEVICE " + k.Name + " " + k.Value
	case KwSegListBegin:
		return "SEG_LIST_BEGIN"
	case KwSegItem:
		return fmt.Sprintf("SEG %s %s %d", formatFloat(k.Real), formatFloat(k.Imag), k.Length)
	case KwSegListEnd:
		return "SEG_LIST_END"
	case KwVarListBegin:
		return "VAR_LIST_BEGIN"
	case KwVarListItem:
		return formatFloat(k.Real)
	case KwVarListEnd:
		return "VAR_LIST_END"
	case KwData:
		return "DATA " + k.Name + " " + k.Format
	case KwDataPair:
		return formatFloat(k.Real) + "," + formatFloat(k.Imag)
	case KwBegin:
		return "BEGIN"
	case KwEnd:
		return "END"
	case KwComment:
		return "#" + k.Value
	default:
		return ""
	}
}
