package vocabulary

// Default returns the built-in vocabulary used when no file is configured.
// Each call returns a fresh value.
func Default() *Vocabulary {
	return &Vocabulary{
		Version: "builtin-1",
		RussianKeywords: map[string]string{
			"телефон":     "telefon",
			"смартфон":    "smartfon",
			"машина":      "mashina",
			"автомобиль":  "avtomobil",
			"квартира":    "kvartira",
			"дом":         "uy",
			"одежда":      "kiyim",
			"обувь":       "poyabzal",
			"кроссовки":   "krossovka",
			"платье":      "ko'ylak",
			"ноутбук":     "noutbuk",
			"компьютер":   "kompyuter",
			"холодильник": "muzlatgich",
			"телевизор":   "televizor",
			"мебель":      "mebel",
			"диван":       "divan",
			"часы":        "soat",
			"сумка":       "sumka",
			"велосипед":   "velosiped",
			"ремонт":      "ta'mir",
			"услуги":      "xizmatlar",
			"аренда":      "ijara",
			"продаётся":   "sotiladi",
			"продается":   "sotiladi",
			"продажа":     "sotuv",
			"детский":     "bolalar",
			"женский":     "ayollar",
			"мужской":     "erkaklar",
			"новый":       "yangi",
		},
		CyrillicLatin: map[string]string{
			"а": "a", "б": "b", "в": "v", "г": "g", "д": "d", "е": "e", "ё": "yo",
			"ж": "j", "з": "z", "и": "i", "й": "y", "к": "k", "л": "l", "м": "m",
			"н": "n", "о": "o", "п": "p", "р": "r", "с": "s", "т": "t", "у": "u",
			"ф": "f", "х": "x", "ц": "ts", "ч": "ch", "ш": "sh", "щ": "sh", "ъ": "'",
			"ы": "i", "ь": "", "э": "e", "ю": "yu", "я": "ya",
			"ғ": "g'", "ў": "o'", "қ": "q", "ҳ": "h", "ң": "ng",
		},
		SynonymGroups: map[string][][]string{
			"transport": {
				{"mashina", "avtomobil", "avto", "moshina"},
				{"velosiped", "bike"},
			},
			"electronics": {
				{"telefon", "smartfon", "mobil", "phone"},
				{"noutbuk", "laptop", "kompyuter"},
				{"televizor", "tv"},
				{"quloqchin", "naushnik", "headphones"},
				{"soat", "chasy", "watch"},
			},
			"real_estate": {
				{"kvartira", "xonadon", "uy"},
				{"ijara", "arenda"},
			},
			"clothing": {
				{"kiyim", "libos"},
				{"poyabzal", "oyoq kiyim", "krossovka", "tufli"},
				{"ko'ylak", "platye"},
				{"sumka", "xalta"},
			},
			"home": {
				{"mebel", "jihoz"},
				{"muzlatgich", "xolodilnik"},
				{"divan", "sofa"},
			},
			"services": {
				{"ta'mir", "remont"},
				{"usta", "master"},
			},
		},
		BrandAliases: map[string]string{
			"nayk":    "nike",
			"naik":    "nike",
			"adidaz":  "adidas",
			"samsyng": "samsung",
			"samsun":  "samsung",
			"eppl":    "apple",
			"epl":     "apple",
			"ayfon":   "iphone",
			"aifon":   "iphone",
			"syaomi":  "xiaomi",
			"ksiaomi": "xiaomi",
			"shaomi":  "xiaomi",
			"puma":    "puma",
		},
		TypoVocabulary: []string{
			"telefon", "smartfon", "mashina", "avtomobil", "kvartira", "noutbuk",
			"kompyuter", "televizor", "muzlatgich", "kiyim", "poyabzal", "krossovka",
			"velosiped", "mebel", "divan", "soat", "sumka", "iphone", "samsung", "xiaomi",
		},
	}
}
