package sheets

// Alias tables below carry the header variants observed across export cycles.
// Order matters: earlier aliases win.

// SchoolAliases maps canonical roster fields to accepted header spellings.
var SchoolAliases = map[string][]string{
	"udise":      {"UDISE", "UDISE Code", "UDISE_CODE", "Udise", "Udise Code", "Udise_Code"},
	"block":      {"Block", "Block Name", "BLOCK", "Block_Name"},
	"schoolName": {"School Name", "Name of School", "School", "SCHOOL NAME", "School_Name"},
	"management": {"Management", "Management Type", "School Management", "mgmt"},
	"location":   {"Location", "School Location", "Rural/Urban", "Area", "School_Location"},
}

// KeyAliases maps canonical answer-key fields to accepted header spellings.
var KeyAliases = map[string][]string{
	"grade":          {"Grade", "GRADE", "Class"},
	"day":            {"Day", "DAY", "Assessment Day"},
	"subject":        {"Subject", "SUBJECT", "Subject Name"},
	"loCode":         {"LO Code", "LO_Code", "LO CODE", "Learning Outcome Code", "LOCode"},
	"loDescription":  {"LO Description", "LO_Description", "LO DESC", "Learning Outcome Description", "LO"},
	"questionNumber": {"Question Number", "Question No", "Question No.", "Qn No", "Q No", "QNo", "Question_Number"},
	"answerKey":      {"Answer Key", "Answer", "Correct Answer", "Key", "ANSWER KEY"},
}

// StudentAliases maps canonical response-sheet fields to accepted header spellings.
var StudentAliases = map[string][]string{
	"grade":     {"Grade", "GRADE", "Class"},
	"day":       {"Day", "DAY", "Assessment Day"},
	"udise":     {"UDISE", "UDISE Code", "UDISE_CODE", "Udise", "Udise Code", "Udise_Code"},
	"block":     {"Block", "Block Name", "BLOCK", "Block_Name"},
	"responses": {"Student Responses", "Responses", "Response", "Student Response", "RESPONSES", "Answer String", "Answers"},
}
