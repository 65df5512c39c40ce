package ddl

// AST for the participle parser

type astScript struct {
	Statements []*astStatement `parser:"(@@ ';'?)*"`
}

type astStatement struct {
	Server *astCreateServer `parser:"'CREATE' ( @@"`
	Table  *astCreateTable  `parser:"| @@ )"`
}

type astCreateServer struct {
	Name    string       `parser:"'SERVER' (@Ident | @QuotedIdent)"`
	Wrapper string       `parser:"('FOREIGN' 'DATA' 'WRAPPER' (@Ident | @QuotedIdent))?"`
	Options []*astOption `parser:"('OPTIONS' '(' @@ (',' @@)* ')')?"`
}

type astCreateTable struct {
	Name    string       `parser:"'FOREIGN' 'TABLE' (@Ident | @QuotedIdent)"`
	Columns []*astColumn `parser:"'(' @@ (',' @@)* ')'"`
	Server  string       `parser:"'SERVER' (@Ident | @QuotedIdent)"`
	Options []*astOption `parser:"('OPTIONS' '(' @@ (',' @@)* ')')?"`
}

type astColumn struct {
	Name string   `parser:"(@Ident | @QuotedIdent)"`
	Type []string `parser:"@Ident+"`
}

type astOption struct {
	Key   string `parser:"(@Ident | @QuotedIdent)"`
	Value string `parser:"@String"`
}
