package constants

// Workbook fixtures of the reimbursement workflow.
const (
	// InputSheetName is the only worksheet read from the source workbook.
	InputSheetName = "信息汇总表"
	// OutputSheetName is the worksheet written to the converted workbook.
	OutputSheetName = "费用"
	// DefaultOutputFilename is used when no output path is given.
	DefaultOutputFilename = "报销.xlsx"
	// PDFSubdirName is probed first during PDF directory auto-discovery.
	PDFSubdirName = "pdfs"
)

// OutputHeader is the fixed header row of the reimbursement layout (A-J).
var OutputHeader = []string{
	"序号", "日期", "所属类型", "开票金额", "税率",
	"不含税金额", "税额", "发票种类", "发票号码", "报销人",
}
