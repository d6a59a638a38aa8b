package classfile

import "strings"

// Descriptors used throughout the generated code
const (
	ObjectDesc      = "Ljava/lang/Object;"
	ObjectArrayDesc = "[Ljava/lang/Object;"
	MainDesc        = "([Ljava/lang/String;)V"
	VoidDesc        = "()V"
)

// MethodDescriptor builds "(args)ret" from field descriptors
func MethodDescriptor(ret string, args ...string) string {
	return "(" + strings.Join(args, "") + ")" + ret
}

// typeSlots returns the number of local/stack slots a field descriptor occupies
func typeSlots(desc string) int {
	switch {
	case desc == "V":
		return 0
	case desc == "J" || desc == "D":
		return 2
	default:
		return 1
	}
}

// splitDescriptor splits a method descriptor into argument and return descriptors.
// Malformed input yields whatever prefix could be read.
func splitDescriptor(desc string) (args []string, ret string) {
	if !strings.HasPrefix(desc, "(") {
		return nil, ""
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		start := i
		for i < len(desc) && desc[i] == '[' {
			i++
		}
		if i < len(desc) && desc[i] == 'L' {
			end := strings.IndexByte(desc[i:], ';')
			if end < 0 {
				return args, ""
			}
			i += end
		}
		i++
		args = append(args, desc[start:i])
	}
	if i < len(desc) {
		ret = desc[i+1:]
	}
	return args, ret
}

// argSlots returns the slots taken by a method's arguments (excluding this)
func argSlots(desc string) int {
	args, _ := splitDescriptor(desc)
	n := 0
	for _, a := range args {
		n += typeSlots(a)
	}
	return n
}

// returnSlots returns the slots pushed by a method's return value
func returnSlots(desc string) int {
	_, ret := splitDescriptor(desc)
	if ret == "" {
		return 0
	}
	return typeSlots(ret)
}
