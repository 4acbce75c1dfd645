package biopass

// ValidateCPF checks a Brazilian CPF: 11 digits after stripping formatting,
// not all repeated, and both checksum digits correct. CPF is the platform's
// natural key for people.
func ValidateCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}

	if len(digits) != 11 {
		return false
	}

	if repeatedDigits(digits) {
		return false
	}

	first := cpfVerifierDigit(digits[:9], 10)
	second := cpfVerifierDigit(digits[:10], 11)

	return first == digits[9] && second == digits[10]
}

func cpfVerifierDigit(digits []int, initialWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (initialWeight - i)
	}

	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

func repeatedDigits(digits []int) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}
