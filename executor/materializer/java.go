package materializer

import (
	"fmt"
	"strings"
)

const javaHelpers = `private static String __readLine(BufferedReader in) throws IOException {
    String line = in.readLine();
    return line == null ? "" : line;
}

private static int[] __parseIntSequence(String line) {
    String s = line.replace('[', ' ').replace(']', ' ').replace(',', ' ').trim();
    if (s.isEmpty()) return new int[0];
    String[] parts = s.split("\\s+");
    int[] out = new int[parts.length];
    for (int i = 0; i < parts.length; i++) out[i] = Integer.parseInt(parts[i]);
    return out;
}

private static String __join(int[] a) {
    return Arrays.stream(a).mapToObj(String::valueOf).collect(Collectors.joining(","));
}

private static String __join(long[] a) {
    return Arrays.stream(a).mapToObj(String::valueOf).collect(Collectors.joining(","));
}

private static String __join(Collection<?> c) {
    return c.stream().map(String::valueOf).collect(Collectors.joining(","));
}
`

func javaIntParser(typ string) string {
	switch typ {
	case "long", "Long":
		return "Long.parseLong"
	case "short", "Short":
		return "Short.parseShort"
	case "byte", "Byte":
		return "Byte.parseByte"
	default:
		return "Integer.parseInt"
	}
}

var javaDialect = &dialect{
	comment: "//",
	readers: map[Kind]paramReader{
		KindIntSequence: func(p Param) string {
			if strings.Contains(p.Type, "List") {
				return fmt.Sprintf("List<Integer> %s = Arrays.stream(__parseIntSequence(__readLine(__in))).boxed().collect(Collectors.toList());\n", p.Name)
			}
			return fmt.Sprintf("int[] %s = __parseIntSequence(__readLine(__in));\n", p.Name)
		},
		KindInteger: func(p Param) string {
			return fmt.Sprintf("%s %s = %s(__readLine(__in).trim());\n", p.Type, p.Name, javaIntParser(p.Type))
		},
		KindFloat: func(p Param) string {
			parser := "Double.parseDouble"
			if p.Type == "float" || p.Type == "Float" {
				parser = "Float.parseFloat"
			}
			return fmt.Sprintf("%s %s = %s(__readLine(__in).trim());\n", p.Type, p.Name, parser)
		},
		KindString: func(p Param) string {
			return fmt.Sprintf("String %s = __readLine(__in);\n", p.Name)
		},
	},
	renderers: map[Kind]renderer{
		KindIntSequence: func(_ *FunctionSignature, expr string) string {
			return fmt.Sprintf("System.out.println(__join(%s));\n", expr)
		},
		KindFloat: func(_ *FunctionSignature, expr string) string {
			return fmt.Sprintf("System.out.println(String.format(Locale.ROOT, \"%%.2f\", (double) %s));\n", expr)
		},
		KindUnsupported: func(_ *FunctionSignature, expr string) string {
			return fmt.Sprintf("System.out.println(%s);\n", expr)
		},
	},
	call: func(sig *FunctionSignature, args []string) string {
		return fmt.Sprintf("__solver.%s(%s)", sig.Name, strings.Join(args, ", "))
	},
	assign: func(sig *FunctionSignature, call string) string {
		return fmt.Sprintf("%s %s = %s;\n", sig.ReturnType, resultVar, call)
	},
	discard: func(call string) string {
		return call + ";\n"
	},
	wrap: func(code, className, body string) string {
		var b strings.Builder
		b.WriteString("import java.io.*;\nimport java.util.*;\nimport java.util.stream.*;\n\n")
		fmt.Fprintf(&b, "public class %s {\n", className)
		b.WriteString(indent(code, 1))
		b.WriteString("\n")
		b.WriteString(indent(javaHelpers, 1))
		b.WriteString("\n    public static void main(String[] args) throws Exception {\n")
		b.WriteString("        BufferedReader __in = new BufferedReader(new InputStreamReader(System.in));\n")
		fmt.Fprintf(&b, "        %[1]s __solver = new %[1]s();\n", className)
		b.WriteString(indent(body, 2))
		b.WriteString("    }\n}\n")
		return b.String()
	},
}
