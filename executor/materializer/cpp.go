package materializer

import (
	"fmt"
	"strings"
)

const cppPrelude = `#include <algorithm>
#include <climits>
#include <cmath>
#include <cstdint>
#include <iomanip>
#include <iostream>
#include <map>
#include <queue>
#include <set>
#include <sstream>
#include <stack>
#include <string>
#include <unordered_map>
#include <unordered_set>
#include <vector>
using namespace std;
`

const cppHelpers = `static string __readLine() {
    string line;
    getline(cin, line);
    if (!line.empty() && line.back() == '\r') line.pop_back();
    return line;
}

static vector<int> __parseIntSequence(const string& line) {
    string s(line);
    for (char& c : s) {
        if (c == '[' || c == ']' || c == ',') c = ' ';
    }
    istringstream in(s);
    vector<int> out;
    long long v;
    while (in >> v) out.push_back((int)v);
    return out;
}

template <typename T>
static void __printSequence(const vector<T>& v) {
    for (size_t i = 0; i < v.size(); i++) {
        if (i) cout << ",";
        cout << v[i];
    }
    cout << endl;
}
`

var cppDialect = &dialect{
	comment: "//",
	readers: map[Kind]paramReader{
		KindIntSequence: func(p Param) string {
			return fmt.Sprintf("vector<int> %s = __parseIntSequence(__readLine());\n", p.Name)
		},
		KindInteger: func(p Param) string {
			return fmt.Sprintf("%[1]s %[2]s = (%[1]s)stoll(__readLine());\n", p.Type, p.Name)
		},
		KindFloat: func(p Param) string {
			return fmt.Sprintf("%[1]s %[2]s = (%[1]s)stod(__readLine());\n", p.Type, p.Name)
		},
		KindString: func(p Param) string {
			return fmt.Sprintf("string %s = __readLine();\n", p.Name)
		},
	},
	renderers: map[Kind]renderer{
		KindIntSequence: func(_ *FunctionSignature, expr string) string {
			return fmt.Sprintf("__printSequence(%s);\n", expr)
		},
		KindFloat: func(_ *FunctionSignature, expr string) string {
			return fmt.Sprintf("cout << fixed << setprecision(2) << %s << endl;\n", expr)
		},
		KindUnsupported: func(_ *FunctionSignature, expr string) string {
			return fmt.Sprintf("cout << %s << endl;\n", expr)
		},
	},
	call: func(sig *FunctionSignature, args []string) string {
		return fmt.Sprintf("%s(%s)", sig.Name, strings.Join(args, ", "))
	},
	assign: func(_ *FunctionSignature, call string) string {
		return fmt.Sprintf("auto %s = %s;\n", resultVar, call)
	},
	discard: func(call string) string {
		return call + ";\n"
	},
	wrap: func(code, _, body string) string {
		var b strings.Builder
		b.WriteString(cppPrelude)
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(code, "\n"))
		b.WriteString("\n\n")
		b.WriteString(cppHelpers)
		b.WriteString("\nint main() {\n")
		b.WriteString(indent(body, 1))
		b.WriteString("    return 0;\n}\n")
		return b.String()
	},
}
