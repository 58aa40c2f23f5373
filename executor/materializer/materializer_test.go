package materializer

import (
	"errors"
	"strings"
	"testing"

	"github.com/to404hanga/online_judge_engine/model"
)

const addStub = "int add(int a, int b) {\n}"

func TestMaterializeCPPHarness(t *testing.T) {
	prog, err := Materialize(Request{
		Language: model.LanguageCPP,
		Code:     "int add(int a, int b) { return a + b; }",
		Stubs:    map[model.Language]string{model.LanguageCPP: addStub},
		JobID:    "job-1",
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if prog.FileName != "main.cpp" {
		t.Errorf("FileName = %q", prog.FileName)
	}
	if prog.Signature == nil || prog.Signature.Name != "add" {
		t.Fatalf("Signature = %+v", prog.Signature)
	}
	for _, want := range []string{
		"#include <iostream>",
		"int add(int a, int b) { return a + b; }",
		"int a = (int)stoll(__readLine());",
		"int b = (int)stoll(__readLine());",
		"auto __result = add(a, b);",
		"cout << __result << endl;",
		"int main() {",
	} {
		if !strings.Contains(prog.Source, want) {
			t.Errorf("source missing %q:\n%s", want, prog.Source)
		}
	}
}

func TestMaterializeRenderers(t *testing.T) {
	tests := []struct {
		stub string
		want string
	}{
		{"vector<int> twoSum(vector<int>& nums, int target) {", "__printSequence(__result);"},
		{"double avg(vector<int>& nums) {", "cout << fixed << setprecision(2) << __result << endl;"},
		{"string echo(string s) {", "cout << __result << endl;"},
		{"void touch(int x) {", "touch(x);"},
	}
	for _, tt := range tests {
		prog, err := Materialize(Request{
			Language: model.LanguageCPP,
			Stubs:    map[model.Language]string{model.LanguageCPP: tt.stub},
		})
		if err != nil {
			t.Fatalf("Materialize(%q): %v", tt.stub, err)
		}
		if !strings.Contains(prog.Source, tt.want) {
			t.Errorf("stub %q: source missing %q", tt.stub, tt.want)
		}
	}
}

func TestMaterializeUnsupportedParamLeavesComment(t *testing.T) {
	prog, err := Materialize(Request{
		Language: model.LanguageCPP,
		Stubs:    map[model.Language]string{model.LanguageCPP: "int f(bool flag) {"},
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !strings.Contains(prog.Source, "// unsupported parameter type: bool flag") {
		t.Errorf("source missing unsupported comment:\n%s", prog.Source)
	}
}

func TestMaterializeJavaHarness(t *testing.T) {
	prog, err := Materialize(Request{
		Language: model.LanguageJava,
		Code:     "public int[] twoSum(int[] nums, int target) { return new int[]{0, 1}; }",
		Stubs:    map[model.Language]string{model.LanguageJava: "public int[] twoSum(int[] nums, int target) {"},
		JobID:    "3f2a-91.x",
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if prog.ClassName != "Class_3f2a_91_x" {
		t.Errorf("ClassName = %q", prog.ClassName)
	}
	if prog.FileName != "Class_3f2a_91_x.java" {
		t.Errorf("FileName = %q", prog.FileName)
	}
	for _, want := range []string{
		"public class Class_3f2a_91_x {",
		"Class_3f2a_91_x __solver = new Class_3f2a_91_x();",
		"int[] nums = __parseIntSequence(__readLine(__in));",
		"int target = Integer.parseInt(__readLine(__in).trim());",
		"int[] __result = __solver.twoSum(nums, target);",
		"System.out.println(__join(__result));",
	} {
		if !strings.Contains(prog.Source, want) {
			t.Errorf("source missing %q:\n%s", want, prog.Source)
		}
	}
}

func TestMaterializeJavaStaticStub(t *testing.T) {
	stub := "public static double scale(float x, int k) {"
	prog, err := Materialize(Request{
		Language: model.LanguageJava,
		Code:     "public static double scale(float x, int k) { return x * k; }",
		Stubs:    map[model.Language]string{model.LanguageJava: stub},
		JobID:    "job-1",
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for _, want := range []string{
		"float x = Float.parseFloat(__readLine(__in).trim());",
		"int k = Integer.parseInt(__readLine(__in).trim());",
		"double __result = __solver.scale(x, k);",
		`String.format(Locale.ROOT, "%.2f", (double) __result)`,
	} {
		if !strings.Contains(prog.Source, want) {
			t.Errorf("source missing %q:\n%s", want, prog.Source)
		}
	}
	if strings.Contains(prog.Source, "static double __result") {
		t.Errorf("modifier leaked into the result declaration:\n%s", prog.Source)
	}

	prog, err = Materialize(Request{
		Language: model.LanguageJava,
		Code:     "public static int add(int a, int b) { return a + b; }",
		Stubs:    map[model.Language]string{model.LanguageJava: "public static int add(int a, int b) {"},
		JobID:    "job-2",
	})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !strings.Contains(prog.Source, "int __result = __solver.add(a, b);") {
		t.Errorf("source:\n%s", prog.Source)
	}
}

func TestMaterializeStubErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "stub missing for language",
			req: Request{
				Language: model.LanguageJava,
				Stubs:    map[model.Language]string{model.LanguageCPP: addStub},
			},
		},
		{
			name: "language without harness generator",
			req: Request{
				Language: model.LanguagePython,
				Stubs:    map[model.Language]string{model.LanguagePython: "def add(a, b):"},
			},
		},
		{
			name: "malformed stub",
			req: Request{
				Language: model.LanguageCPP,
				Stubs:    map[model.Language]string{model.LanguageCPP: "class Solution {"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Materialize(tt.req)
			var spe *SignatureParseError
			if !errors.As(err, &spe) {
				t.Fatalf("err = %v, want *SignatureParseError", err)
			}
		})
	}
}

func TestMaterializeWithoutStub(t *testing.T) {
	full := "#include <cstdio>\nint main() { int a, b; scanf(\"%d %d\", &a, &b); printf(\"%d\\n\", a + b); }\n"
	prog, err := Materialize(Request{Language: model.LanguageCPP, Code: full})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if prog.Source != full {
		t.Errorf("complete program was rewritten:\n%s", prog.Source)
	}

	prog, err = Materialize(Request{Language: model.LanguageCPP, Code: "vector<int> pairUp(vector<int>& nums, int target) { return {}; }"})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !strings.Contains(prog.Source, "vector<int> result = pairUp(nums, target);") {
		t.Errorf("legacy shim does not call the fragment's function:\n%s", prog.Source)
	}

	prog, err = Materialize(Request{Language: model.LanguageJava, Code: "public class Main {}"})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if prog.FileName != "Main.java" || prog.ClassName != "Main" {
		t.Errorf("java without stub = %s/%s", prog.FileName, prog.ClassName)
	}

	prog, err = Materialize(Request{Language: model.LanguagePython, Code: "print(1)"})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if prog.FileName != "main.py" || prog.Source != "print(1)" {
		t.Errorf("python program = %s %q", prog.FileName, prog.Source)
	}

	if _, err := Materialize(Request{Language: "cobol"}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("unknown language err = %v", err)
	}
}
