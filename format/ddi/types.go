package ddi

// Element names carry no namespace so that documents with and without the
// DDI namespace decode alike.

type xmlCodeBook struct {
	ID        string        `xml:"ID,attr"`
	StudyDesc *xmlStudyDesc `xml:"stdyDscr"`
}

type xmlStudyDesc struct {
	Citation xmlCitation  `xml:"citation"`
	Info     xmlStudyInfo `xml:"stdyInfo"`
	Method   xmlMethod    `xml:"method"`
}

type xmlCitation struct {
	TitleStmt   xmlTitleStmt   `xml:"titlStmt"`
	ProdStmt    xmlProdStmt    `xml:"prodStmt"`
	VersionStmt xmlVersionStmt `xml:"verStmt"`
	Holdings    []xmlHoldings  `xml:"holdings"`
}

type xmlTitleStmt struct {
	Title    string   `xml:"titl"`
	AltTitle string   `xml:"altTitl"`
	IDNo     []string `xml:"IDNo"`
}

type xmlProdStmt struct {
	Producers []xmlAbbrText `xml:"producer"`
	ProdDate  []xmlDate     `xml:"prodDate"`
}

type xmlVersionStmt struct {
	Version []string `xml:"version"`
}

type xmlHoldings struct {
	URI  string `xml:"URI,attr"`
	Text string `xml:",chardata"`
}

type xmlStudyInfo struct {
	Subject  xmlSubject     `xml:"subject"`
	Abstract []xmlRichText  `xml:"abstract"`
	Summary  xmlSummaryDesc `xml:"sumDscr"`
}

type xmlSubject struct {
	Keywords []xmlAbbrText `xml:"keyword"`
	Topics   []xmlAbbrText `xml:"topcClas"`
}

type xmlSummaryDesc struct {
	TimePeriods  []xmlDate     `xml:"timePrd"`
	Nations      []xmlAbbrText `xml:"nation"`
	AnalysisUnit []string      `xml:"anlyUnit"`
	Universe     []string      `xml:"universe"`
}

type xmlMethod struct {
	DataColl xmlDataColl `xml:"dataColl"`
}

type xmlDataColl struct {
	Collectors []xmlAbbrText `xml:"dataCollector"`
	CollModes  []string      `xml:"collMode"`
}

type xmlAbbrText struct {
	Abbr string `xml:"abbr,attr"`
	Text string `xml:",chardata"`
}

type xmlDate struct {
	Date  string `xml:"date,attr"`
	Event string `xml:"event,attr"`
	Text  string `xml:",chardata"`
}

type xmlRichText struct {
	Inner string `xml:",innerxml"`
	Text  string `xml:",chardata"`
}
