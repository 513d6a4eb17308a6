package zippyshare

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"zippyfetch/internal"
)

var (
	serverIDPattern  = regexp.MustCompile(`server\s*=\s*'www(\d+)'`)
	filenamePattern  = regexp.MustCompile(`"/([\p{L}\p{M}\p{N}\p{Pc}.\-]+)"`)
	challengePattern = regexp.MustCompile(`\(\s*(\d+)\s*%\s*(\d+)\s*\+\s*(\d+)\s*%\s*(\d+)\s*\)`)
	resultURLPattern = regexp.MustCompile(`\[url=(https://www\d+\.zippyshare\.com/v/[0-9A-Za-z]+/file\.html)\]`)
)

// Challenge is the arithmetic puzzle embedded in a file page. The token is
// Base % ModulusA + Base % ModulusB.
type Challenge struct {
	Base     int64
	ModulusA int64
	ModulusB int64
}

// Token evaluates the challenge
func (c Challenge) Token() (int64, error) {
	if c.ModulusA == 0 || c.ModulusB == 0 {
		return 0, internal.NewPatternNotFoundError("challenge").
			WithContext("reason", "zero modulus")
	}

	a := c.Base % c.ModulusA
	b := c.Base % c.ModulusB
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, internal.NewHostError(internal.ErrNumericOverflow, "challenge token overflows int64")
	}
	return a + b, nil
}

// ServerIDFromHomePage finds the upload server number on the site's home page
func ServerIDFromHomePage(text string) (string, error) {
	m := serverIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", internal.NewPatternNotFoundError("server id")
	}
	return m[1], nil
}

// FilenameFromFilePage finds the first quoted "/<name>" path on a file page
func FilenameFromFilePage(text string) (string, error) {
	m := filenamePattern.FindStringSubmatch(text)
	if m == nil {
		return "", internal.NewPatternNotFoundError("filename")
	}
	return m[1], nil
}

// ChallengeFromFilePage finds the first (A % B + A' % C) expression on a file
// page. A' is matched but not used.
func ChallengeFromFilePage(text string) (Challenge, error) {
	m := challengePattern.FindStringSubmatch(text)
	if m == nil {
		return Challenge{}, internal.NewPatternNotFoundError("challenge")
	}

	var values [3]int64
	for i, s := range []string{m[1], m[2], m[4]} {
		v, err := parseChallengeInt(s)
		if err != nil {
			return Challenge{}, err
		}
		values[i] = v
	}

	return Challenge{Base: values[0], ModulusA: values[1], ModulusB: values[2]}, nil
}

func parseChallengeInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, internal.WrapHostError(internal.ErrNumericOverflow,
				fmt.Sprintf("challenge operand %s does not fit in int64", s), err)
		}
		return 0, internal.WrapHostError(internal.ErrPatternNotFound, "challenge operand is not a number", err)
	}
	return v, nil
}

// ResultURLFromUploadResponse finds the canonical file URL in the upload
// response's [url=...] share snippet
func ResultURLFromUploadResponse(text string) (string, error) {
	m := resultURLPattern.FindStringSubmatch(text)
	if m == nil {
		return "", internal.NewPatternNotFoundError("result url")
	}
	return m[1], nil
}
