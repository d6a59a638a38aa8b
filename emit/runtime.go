package emit

// Runtime library members the generated code calls into. The library
// itself ships separately and is put on the classpath at execution time.
const (
	DecimalClass    = "java/math/BigDecimal"
	DecimalDesc     = "Ljava/math/BigDecimal;"
	DecimalCtorDesc = "(Ljava/lang/String;)V"

	ComplexClass       = "runtime/math/BigComplex"
	ComplexFactory     = "valueOf"
	ComplexDesc        = "Lruntime/math/BigComplex;"
	NumberFactoryDesc  = "(" + DecimalDesc + ")" + ComplexDesc
	ComplexFactoryDesc = "(" + DecimalDesc + DecimalDesc + ")" + ComplexDesc

	TruthClass = "runtime/OtherMethods"
	TruthName  = "truthValue"
	TruthDesc  = "(Ljava/lang/Object;)Z"

	ListClass       = "runtime/list/JyxalList"
	ListFactory     = "create"
	ListFactoryDesc = "([Ljava/lang/Object;)Lruntime/list/JyxalList;"

	SystemClass     = "java/lang/System"
	StdoutField     = "out"
	PrintStreamDesc = "Ljava/io/PrintStream;"
	PrintStream     = "java/io/PrintStream"
	PrintlnName     = "println"
	PrintlnDesc     = "(Ljava/lang/Object;)V"

	ObjectClass = "java/lang/Object"
)
