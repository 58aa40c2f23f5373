package materializer

import (
	"fmt"
	"strings"
)

const defaultLegacyFunction = "twoSum"

// legacyCPPSource wraps a bare C++ function that has no stub. The shim
// reads an integer sequence and a target, calls the first function defined
// in code and prints the result as a bracketed list.
func legacyCPPSource(code string) string {
	fn := defaultLegacyFunction
	if sig, err := ParseSignature(code); err == nil {
		fn = sig.Name
	}

	var b strings.Builder
	b.WriteString(cppPrelude)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(code, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, `int main() {
    string line;
    getline(cin, line);
    for (char& c : line) {
        if (c == '[' || c == ']' || c == ',') c = ' ';
    }
    istringstream in(line);
    vector<int> nums;
    int v;
    while (in >> v) nums.push_back(v);
    int target = 0;
    cin >> target;
    vector<int> result = %s(nums, target);
    cout << "[";
    for (size_t i = 0; i < result.size(); i++) {
        if (i) cout << ",";
        cout << result[i];
    }
    cout << "]" << endl;
    return 0;
}
`, fn)
	return b.String()
}

// needsLegacyShim reports whether code is a bare C++ fragment rather than a
// complete translation unit.
func needsLegacyShim(code string) bool {
	return !strings.Contains(code, "#include")
}
