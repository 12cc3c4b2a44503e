// core/alphabet/alphabet.go
package alphabet

import (
	"fmt"
	"strings"
)

// Nucleotides in the fixed order used to enumerate codons.
const Nucleotides = "ACGT"

// Stop is the symbol for a stop codon in amino-acid space.
const Stop = "*"

// Chartype names accepted across the toolset.
const (
	CharsAA     = "aa"
	CharsAAStop = "aa_stop"
	CharsCodon  = "codon"
)

// AminoAcids lists the 20 amino acids in alphabetical one-letter order.
var AminoAcids = []string{
	"A", "C", "D", "E", "F", "G", "H", "I", "K", "L",
	"M", "N", "P", "Q", "R", "S", "T", "V", "W", "Y",
}

// AminoAcidsWithStop is AminoAcids plus the stop symbol.
var AminoAcidsWithStop = append(append([]string(nil), AminoAcids...), Stop)

// Codons lists all 64 codons in ACGT-major order.
var Codons []string

var codonToAA = map[string]string{
	"TTT": "F", "TTC": "F", "TTA": "L", "TTG": "L",
	"CTT": "L", "CTC": "L", "CTA": "L", "CTG": "L",
	"ATT": "I", "ATC": "I", "ATA": "I", "ATG": "M",
	"GTT": "V", "GTC": "V", "GTA": "V", "GTG": "V",
	"TCT": "S", "TCC": "S", "TCA": "S", "TCG": "S",
	"CCT": "P", "CCC": "P", "CCA": "P", "CCG": "P",
	"ACT": "T", "ACC": "T", "ACA": "T", "ACG": "T",
	"GCT": "A", "GCC": "A", "GCA": "A", "GCG": "A",
	"TAT": "Y", "TAC": "Y", "TAA": "*", "TAG": "*",
	"CAT": "H", "CAC": "H", "CAA": "Q", "CAG": "Q",
	"AAT": "N", "AAC": "N", "AAA": "K", "AAG": "K",
	"GAT": "D", "GAC": "D", "GAA": "E", "GAG": "E",
	"TGT": "C", "TGC": "C", "TGA": "*", "TGG": "W",
	"CGT": "R", "CGC": "R", "CGA": "R", "CGG": "R",
	"AGT": "S", "AGC": "S", "AGA": "R", "AGG": "R",
	"GGT": "G", "GGC": "G", "GGA": "G", "GGG": "G",
}

func init() {
	Codons = make([]string, 0, 64)
	for _, a := range Nucleotides {
		for _, b := range Nucleotides {
			for _, c := range Nucleotides {
				Codons = append(Codons, string(a)+string(b)+string(c))
			}
		}
	}
}

// Chars returns the ordered character set for a chartype name.
func Chars(chartype string) ([]string, error) {
	switch chartype {
	case CharsAA:
		return append([]string(nil), AminoAcids...), nil
	case CharsAAStop:
		return append([]string(nil), AminoAcidsWithStop...), nil
	case CharsCodon:
		return append([]string(nil), Codons...), nil
	default:
		return nil, fmt.Errorf("unknown chartype %q (want %s, %s, or %s)",
			chartype, CharsAA, CharsAAStop, CharsCodon)
	}
}

// Translate maps a codon to its amino acid (stop codons map to Stop).
func Translate(codon string) (string, bool) {
	aa, ok := codonToAA[strings.ToUpper(codon)]
	return aa, ok
}

// IsStopCodon reports whether codon encodes a translation stop.
func IsStopCodon(codon string) bool {
	aa, ok := Translate(codon)
	return ok && aa == Stop
}

// IsCodon reports whether s is a valid codon.
func IsCodon(s string) bool {
	_, ok := codonToAA[strings.ToUpper(s)]
	return ok
}

// NTDist counts the nucleotide positions at which two codons differ
// (the 1/2/3-mutation distance class; 0 for identical codons).
func NTDist(a, b string) int {
	if len(a) != 3 || len(b) != 3 {
		return -1
	}
	d := 0
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
